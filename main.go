package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecommerce-dashboard/controllers/dashboard"
	"ecommerce-dashboard/controllers/health"
	"ecommerce-dashboard/middleware"
	"ecommerce-dashboard/pkg/config"
	"ecommerce-dashboard/pkg/dataset"
	"ecommerce-dashboard/pkg/monitoring"
	"ecommerce-dashboard/router"
	"ecommerce-dashboard/services/dashboard_service"
	"ecommerce-dashboard/views"

	"github.com/gin-gonic/gin"
)

// 构建时注入的变量
var (
	Version            = "dev"
	BuildTime          = "unknown"
	GitCommit          = "unknown"
	DefaultServiceName = "ecommerce-dashboard"
)

func main() {
	showVersion := flag.Bool("version", false, "显示版本信息")
	renderFile := flag.String("render", "", "把默认区间的看板写入 HTML 文件后退出")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("E-Commerce Dashboard\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		return
	}

	// 初始化配置
	if err := config.InitConfig(); err != nil {
		log.Fatalf("❌ 配置加载失败: %v", err)
	}
	cfg := config.GetConfig()

	// 加载数据集，失败直接退出
	loc := cfg.Data.Location()
	lines, stats, err := dataset.LoadFile(cfg.Data.File, dataset.Options{
		Comma:    cfg.Data.SeparatorRune(),
		Location: loc,
	})
	if err != nil {
		log.Fatalf("❌ 数据集加载失败: %v", err)
	}
	monitoring.RecordDatasetLoad(stats.Rows, stats.Skipped)
	log.Printf("✅ 数据集加载完成: %s (%d 行, 跳过 %d 行)", cfg.Data.File, stats.Rows, stats.Skipped)

	board := dashboard_service.NewDashboard(lines,
		dashboard_service.WithTopN(cfg.Dashboard.TopN),
		dashboard_service.WithLocation(loc),
	)
	presenter := views.Presenter{
		Title:          cfg.Dashboard.Title,
		Caption:        cfg.Dashboard.Caption,
		CurrencyPrefix: cfg.Dashboard.CurrencyPrefix,
		Locale:         cfg.Dashboard.Locale,
	}
	if cfg.Dashboard.SidebarImage != "" {
		presenter.SidebarURL = "/static/sidebar"
	}

	if *renderFile != "" {
		// 静态页面直接引用图片文件
		presenter.SidebarURL = cfg.Dashboard.SidebarImage
		if err := renderStatic(*renderFile, board, presenter); err != nil {
			log.Fatalf("❌ 生成页面失败: %v", err)
		}
		log.Printf("✅ 看板已写入 %s (区间 %s)", *renderFile, board.DefaultRange())
		return
	}

	gin.SetMode(cfg.Server.Mode)

	var requestLog io.Writer
	if cfg.Log.Output == "file" {
		file, err := middleware.SetupLogFile(cfg.Log.Dir)
		if err != nil {
			log.Fatalf("❌ 创建日志文件失败: %v", err)
		}
		defer file.Close()
		requestLog = file
	}

	app := router.NewEngine(cfg, router.Controllers{
		Dashboard: dashboard.NewDashboardController(board, presenter, cfg.Dashboard.SidebarImage),
		Health:    health.NewHealthController(DefaultServiceName, Version, board, stats),
	}, requestLog)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Printf("🚀 %s 启动在端口 :%s (默认区间 %s)", DefaultServiceName, cfg.Server.Port, board.DefaultRange())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("服务器强制关闭: %v", err)
	}

	log.Printf("服务器已安全关闭")
}

// renderStatic 生成默认区间的静态页面
func renderStatic(path string, board *dashboard_service.Dashboard, presenter views.Presenter) error {
	view, err := presenter.Page(board.Build(board.DefaultRange()), board.DefaultRange())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := views.Render(&buf, view); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func usage() {
	fmt.Printf("E-Commerce Dashboard - 电商订单分析看板\n\n")
	fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
	fmt.Printf("Options:\n")
	fmt.Printf("  -version         显示版本信息\n")
	fmt.Printf("  -help            显示帮助信息\n")
	fmt.Printf("  -render <file>   生成静态 HTML 页面后退出\n\n")
	fmt.Printf("Environment Variables:\n")
	fmt.Printf("  CONFIG_FILE      配置文件 (默认: config/config.yaml)\n")
	fmt.Printf("  DATA_FILE        数据集文件 (默认: main_data.csv)\n")
	fmt.Printf("  SERVER_PORT      服务端口 (默认: 8801)\n")
	fmt.Printf("  GIN_MODE         运行模式 debug/release/test\n")
	fmt.Printf("  DASHBOARD_LOCALE 金额格式区域 (默认: es-CO)\n")
	fmt.Printf("  SESSION_SECRET   会话 cookie 密钥\n")
}
