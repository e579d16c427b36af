package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus 指标定义
var (
	// HTTP 请求相关指标
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时分布",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// 数据集相关指标
	datasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_dataset_rows",
			Help: "已加载的订单行数",
		},
	)

	datasetSkippedRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_dataset_skipped_rows",
			Help: "加载时因缺少审核时间被跳过的行数",
		},
	)

	// 看板计算相关指标
	dashboardBuildsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_builds_total",
			Help: "看板计算次数",
		},
	)

	dashboardBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_build_duration_seconds",
			Help:    "看板计算耗时分布",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0},
		},
	)

	dashboardFilteredRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_filtered_rows",
			Help:    "每次计算时区间内的订单行数",
			Buckets: prometheus.ExponentialBuckets(1, 10, 7),
		},
	)

	chartRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_chart_renders_total",
			Help: "图表渲染次数",
		},
		[]string{"chart"},
	)
)

// PrometheusMiddleware Gin中间件，用于收集HTTP指标
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// 处理请求
		c.Next()

		// 记录指标
		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			endpoint,
			statusCode,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

// RecordDatasetLoad 记录数据集加载结果
func RecordDatasetLoad(rows, skipped int) {
	datasetRows.Set(float64(rows))
	datasetSkippedRows.Set(float64(skipped))
}

// RecordDashboardBuild 记录一次看板计算
func RecordDashboardBuild(filteredRows int, duration time.Duration) {
	dashboardBuildsTotal.Inc()
	dashboardBuildDuration.Observe(duration.Seconds())
	dashboardFilteredRows.Observe(float64(filteredRows))
}

// RecordChartRender 记录一次图表渲染
func RecordChartRender(chart string) {
	chartRendersTotal.WithLabelValues(chart).Inc()
}
