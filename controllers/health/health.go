package health

import (
	"runtime"
	"time"

	"ecommerce-dashboard/pkg/dataset"
	"ecommerce-dashboard/pkg/response"
	"ecommerce-dashboard/services/dashboard_service"

	"github.com/gin-gonic/gin"
)

// startTime 应用启动时间
var startTime = time.Now()

// HealthController 健康检查控制器
type HealthController struct {
	service   string
	version   string
	dashboard *dashboard_service.Dashboard
	stats     dataset.Stats
}

// NewHealthController 创建健康检查控制器
func NewHealthController(service, version string, d *dashboard_service.Dashboard, stats dataset.Stats) *HealthController {
	return &HealthController{service: service, version: version, dashboard: d, stats: stats}
}

// CheckHealth 基础健康检查
func (h *HealthController) CheckHealth(c *gin.Context) {
	response.Success(c, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"service":   h.service,
		"version":   h.version,
		"dataset": gin.H{
			"rows":          h.stats.Rows,
			"skipped":       h.stats.Skipped,
			"default_range": h.dashboard.DefaultRange(),
		},
	})
}

// CheckLiveness 存活性检查
func (h *HealthController) CheckLiveness(c *gin.Context) {
	response.Success(c, gin.H{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// CheckReadiness 就绪性检查，数据集加载完成即就绪
func (h *HealthController) CheckReadiness(c *gin.Context) {
	if h.dashboard == nil {
		response.Error(c, response.ERROR, "service not ready")
		return
	}

	response.Success(c, gin.H{
		"status":    "ready",
		"rows":      h.dashboard.Size(),
		"timestamp": time.Now().Unix(),
	})
}

// GetSystemInfo 获取系统信息
func (h *HealthController) GetSystemInfo(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	info := gin.H{
		"service": gin.H{
			"name":    h.service,
			"version": h.version,
			"mode":    gin.Mode(),
			"uptime":  time.Since(startTime).String(),
		},
		"system": gin.H{
			"go_version":    runtime.Version(),
			"num_cpu":       runtime.NumCPU(),
			"num_goroutine": runtime.NumGoroutine(),
		},
		"memory": gin.H{
			"alloc":       bToMb(m.Alloc),
			"total_alloc": bToMb(m.TotalAlloc),
			"sys":         bToMb(m.Sys),
			"num_gc":      m.NumGC,
		},
		"dataset": gin.H{
			"rows":         h.stats.Rows,
			"skipped":      h.stats.Skipped,
			"min_approved": h.stats.MinApproved,
			"max_approved": h.stats.MaxApproved,
		},
		"timestamp": time.Now().Unix(),
	}

	response.Success(c, info)
}

// bToMb 字节转MB
func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
