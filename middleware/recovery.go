package middleware

import (
	"fmt"
	"log"
	"runtime/debug"

	"ecommerce-dashboard/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey 请求ID在上下文和响应头中的名字
const RequestIDKey = "X-Request-ID"

// Recovery 自定义恢复中间件
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		// 记录panic详细信息
		err := fmt.Sprintf("panic recovered: %v", recovered)
		stack := string(debug.Stack())

		log.Printf("[PANIC RECOVERY] %s %s request_id=%s %s\n%s",
			c.Request.Method, c.Request.URL.Path, c.GetString("request_id"), err, stack)

		// 根据环境返回不同的错误信息
		if gin.Mode() == gin.DebugMode {
			response.AbortWithStatus(c, 500, response.INTERNAL_ERROR, gin.H{
				"panic": fmt.Sprint(recovered),
				"stack": stack,
			}, "服务器内部错误")
		} else {
			response.AbortWithStatus(c, 500, response.INTERNAL_ERROR, nil, "服务器内部错误")
		}
	})
}

// ErrorHandler 统一错误处理中间件
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 检查是否有错误
		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			// 记录错误
			log.Printf("[ERROR] %s %s - %v", c.Request.Method, c.Request.URL.Path, err.Err)

			// 如果还没有响应，则发送错误响应
			if !c.Writer.Written() {
				switch err.Type {
				case gin.ErrorTypeBind:
					response.BadRequest(c, "请求参数错误: "+err.Error())
				case gin.ErrorTypePublic:
					response.Error(c, response.ERROR, err.Error())
				default:
					response.Error(c, response.INTERNAL_ERROR, "内部服务错误")
				}
			}
		}
	}
}

// SecureHeaders 安全头中间件
func SecureHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 设置安全相关的HTTP头
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// 在生产环境中启用HSTS
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// RequestID 为每个请求生成唯一ID，客户端已带合法ID时沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDKey)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDKey, requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
