package router

import (
	"io"
	"log"

	"ecommerce-dashboard/controllers/dashboard"
	"ecommerce-dashboard/controllers/health"
	"ecommerce-dashboard/middleware"
	"ecommerce-dashboard/pkg/config"
	"ecommerce-dashboard/pkg/monitoring"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// sessionName 保存日期区间的 cookie 名
const sessionName = "dashboard_session"

// Controllers 路由依赖的控制器
type Controllers struct {
	Dashboard *dashboard.DashboardController
	Health    *health.HealthController
}

// NewEngine 创建 gin 引擎并挂载全局中间件和全部路由，requestLog 为 nil 时不记录请求日志
func NewEngine(cfg *config.Config, ctl Controllers, requestLog io.Writer) *gin.Engine {
	app := gin.New()

	// 添加全局中间件
	app.Use(middleware.RequestID())
	app.Use(middleware.Recovery())
	app.Use(middleware.ErrorHandler())
	app.Use(middleware.Performance(middleware.PerformanceConfig{
		SlowThreshold: cfg.Log.SlowThreshold(),
		EnableLogging: cfg.Log.Allows("warn"),
		SkipPaths:     []string{"/health", "/metrics", "/favicon.ico"},
	}))
	app.Use(middleware.SecureHeaders())
	app.Use(middleware.Cors(middleware.DefaultCorsConfig(cfg.Security.AllowedOrigins...)))
	if cfg.Security.EnableRateLimit && cfg.Security.RateLimit > 0 {
		app.Use(middleware.RateLimit(cfg.Security.RateLimit))
	}
	if requestLog != nil {
		app.Use(middleware.RequestLogger(requestLog))
	}

	// 添加 Prometheus 监控中间件
	app.Use(monitoring.PrometheusMiddleware())

	InitMonitoringRoutes(app, ctl.Health)
	Init(app, ctl.Dashboard, cfg.Dashboard.SessionSecret)
	return app
}

// Init 看板路由
func Init(r *gin.Engine, ctl *dashboard.DashboardController, sessionSecret string) {
	if sessionSecret == "" {
		// 未配置时每次启动随机生成，重启后旧会话失效
		sessionSecret = uuid.NewString()
		log.Printf("⚠️ 未配置 session_secret，使用随机密钥")
	}
	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 7 * 24 * 3600, HttpOnly: true})

	pageGroup := r.Group("")
	pageGroup.Use(sessions.Sessions(sessionName, store))
	{
		pageGroup.GET("/", ctl.Page)
	}

	r.GET("/charts/:name", ctl.Chart)
	r.GET("/static/sidebar", ctl.Sidebar)

	apiGroup := r.Group("/api/dashboard")
	{
		apiGroup.GET("", ctl.Report)
		apiGroup.GET("/daily-orders", ctl.DailyOrders)
		apiGroup.GET("/products/reviews", ctl.ProductReviews)
		apiGroup.GET("/products/sales", ctl.ProductSales)
		apiGroup.GET("/customers/states", ctl.CustomerStates)
		apiGroup.GET("/sellers/reviews", ctl.SellerReviews)
		apiGroup.GET("/customers/rfm", ctl.CustomerRFM)
	}
}

// InitMonitoringRoutes 健康检查与监控指标
func InitMonitoringRoutes(r *gin.Engine, h *health.HealthController) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", h.CheckHealth)

	monitorGroup := r.Group("/api/monitor")
	{
		monitorGroup.GET("/live", h.CheckLiveness)
		monitorGroup.GET("/ready", h.CheckReadiness)
		monitorGroup.GET("/system", h.GetSystemInfo)
	}
}
