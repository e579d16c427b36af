package middleware

import (
	"log"
	"net/http"
	"sync"
	"time"

	"ecommerce-dashboard/pkg/response"

	"github.com/gin-gonic/gin"
)

// PerformanceConfig 性能监控配置
type PerformanceConfig struct {
	SlowThreshold time.Duration // 慢请求阈值
	EnableLogging bool          // 是否记录日志
	SkipPaths     []string      // 跳过监控的路径
}

// DefaultPerformanceConfig 默认性能配置
func DefaultPerformanceConfig() PerformanceConfig {
	return PerformanceConfig{
		SlowThreshold: 500 * time.Millisecond,
		EnableLogging: true,
		SkipPaths:     []string{"/health", "/metrics", "/favicon.ico"},
	}
}

// Performance 性能监控中间件
func Performance(config ...PerformanceConfig) gin.HandlerFunc {
	cfg := DefaultPerformanceConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skip[path] = struct{}{}
	}

	return func(c *gin.Context) {
		// 检查是否跳过监控
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// 处理请求
		c.Next()

		// 计算耗时
		latency := time.Since(start)
		status := c.Writer.Status()

		// 记录慢请求日志
		if cfg.EnableLogging && latency > cfg.SlowThreshold {
			log.Printf("[SLOW REQUEST] %s %s?%s - Status: %d, Latency: %v",
				method, path, c.Request.URL.RawQuery, status, latency)
		}
	}
}

// RateLimit 线程安全的内存限流中间件，按客户端IP统计每分钟请求数
func RateLimit(rpm int) gin.HandlerFunc {
	// 使用sync.Map来避免竞态条件
	var requests sync.Map

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		// 获取或创建IP的请求记录
		var timestamps []time.Time
		if value, exists := requests.Load(ip); exists {
			timestamps = value.([]time.Time)
		}

		// 清理过期的请求记录
		var validTimestamps []time.Time
		cutoff := now.Add(-time.Minute)

		for _, timestamp := range timestamps {
			if timestamp.After(cutoff) {
				validTimestamps = append(validTimestamps, timestamp)
			}
		}

		// 检查是否超过限制
		if len(validTimestamps) >= rpm {
			c.Header("Retry-After", "60")
			response.AbortWithStatus(c, http.StatusTooManyRequests, response.TOO_MANY_REQUESTS, nil, "请求过于频繁，请稍后再试")
			return
		}

		// 记录当前请求
		validTimestamps = append(validTimestamps, now)
		requests.Store(ip, validTimestamps)

		c.Next()
	}
}
