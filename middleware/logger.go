package middleware

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// SetupLogFile 按日期创建日志文件
func SetupLogFile(logDir string) (*os.File, error) {
	// 创建日志文件夹
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		return nil, err
	}

	// 创建日志文件，文件名包含日期
	logFile := filepath.Join(logDir, time.Now().Format("2006-01-02")+".log")
	return os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
}

// RequestLogger 通用请求日志中间件
func RequestLogger(w io.Writer) gin.HandlerFunc {
	logger := log.New(w, "", log.LstdFlags)

	return func(c *gin.Context) {
		// 开始时间
		start := time.Now()

		// 处理请求
		c.Next()

		latency := time.Since(start)

		// 方法 路径 状态 客户端IP 查询参数 请求ID 耗时
		logger.Printf("%s %s %d %s %q %s %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			c.ClientIP(),
			c.Request.URL.RawQuery,
			c.GetString("request_id"),
			latency,
		)
	}
}
