package views

import (
	"errors"
	"fmt"

	"ecommerce-dashboard/model"
	"ecommerce-dashboard/pkg/chart"
	"ecommerce-dashboard/pkg/monitoring"
	"ecommerce-dashboard/services/dashboard_service"
	"ecommerce-dashboard/utils"

	"github.com/shopspring/decimal"
)

// 图表名称，对应 /charts/:name
const (
	ChartDailyOrders    = "daily-orders"
	ChartProductReviews = "product-reviews"
	ChartProductSales   = "product-sales"
	ChartCustomerStates = "customer-states"
	ChartSellerReviews  = "seller-reviews"
	ChartRFMRecency     = "rfm-recency"
	ChartRFMFrequency   = "rfm-frequency"
	ChartRFMMonetary    = "rfm-monetary"
)

// ChartNames 所有图表，按页面顺序
var ChartNames = []string{
	ChartDailyOrders,
	ChartProductReviews,
	ChartProductSales,
	ChartCustomerStates,
	ChartSellerReviews,
	ChartRFMRecency,
	ChartRFMFrequency,
	ChartRFMMonetary,
}

// ErrUnknownChart 图表名称不存在
var ErrUnknownChart = errors.New("unknown chart")

var chartTitles = map[string]string{
	ChartDailyOrders:    "Daily Orders",
	ChartProductReviews: "Products with the Highest Review Score",
	ChartProductSales:   "Products with the Most Sales",
	ChartCustomerStates: "Number of Customers by State",
	ChartSellerReviews:  "Sellers with the Highest Review Score",
	ChartRFMRecency:     "By Recency (days)",
	ChartRFMFrequency:   "By Frequency",
	ChartRFMMonetary:    "By Monetary",
}

// Presenter 把 Report 转成展示用的指标和图表
type Presenter struct {
	Title          string
	Caption        string
	CurrencyPrefix string
	Locale         string
	SidebarURL     string
}

// Currency 金额格式化
func (p Presenter) Currency(amount decimal.Decimal) string {
	return utils.FormatCurrency(amount, p.CurrencyPrefix, p.Locale)
}

// ChartTitle 图表标题
func ChartTitle(name string) string {
	return chartTitles[name]
}

// Chart 渲染一张 SVG 图表
func (p Presenter) Chart(name string, r *dashboard_service.Report) ([]byte, error) {
	opts := chart.Options{Title: chartTitles[name]}

	var out []byte
	switch name {
	case ChartDailyOrders:
		opts.Width, opts.Height = 960, 360
		out = chart.LineChart(dailyPoints(r.DailyOrders), opts)
	case ChartProductReviews:
		opts.Highlight = true
		out = chart.HorizontalBarChart(reviewPoints(r.TopProductReviews()), opts)
	case ChartProductSales:
		opts.Highlight = true
		opts.Mirror = true
		out = chart.HorizontalBarChart(salesPoints(r.TopProductSales()), opts)
	case ChartCustomerStates:
		opts.Width = 960
		opts.Height = stateChartHeight(len(r.CustomersByState))
		opts.Palette = chart.Viridis
		opts.LabelChars = 6
		out = chart.HorizontalBarChart(statePoints(r.StatesByCustomers()), opts)
	case ChartSellerReviews:
		opts.Width = 960
		opts.Highlight = true
		opts.LabelChars = 32
		out = chart.HorizontalBarChart(reviewPoints(r.TopSellerReviews()), opts)
	case ChartRFMRecency:
		out = chart.VerticalBarChart(rfmPoints(r.TopRecency(), func(m model.RFM) float64 {
			return float64(m.Recency)
		}), opts)
	case ChartRFMFrequency:
		out = chart.VerticalBarChart(rfmPoints(r.TopFrequency(), func(m model.RFM) float64 {
			return float64(m.Frequency)
		}), opts)
	case ChartRFMMonetary:
		out = chart.VerticalBarChart(rfmPoints(r.TopMonetary(), func(m model.RFM) float64 {
			return m.Monetary.InexactFloat64()
		}), opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, name)
	}

	monitoring.RecordChartRender(name)
	return out, nil
}

// HeadlineMetrics 订单数与营收
func (p Presenter) HeadlineMetrics(r *dashboard_service.Report) []Metric {
	return []Metric{
		{Label: "Total orders", Value: utils.FormatCount(r.TotalOrders)},
		{Label: "Total Revenue", Value: p.Currency(r.TotalRevenue)},
	}
}

// RFMMetrics RFM 平均值，没有客户时显示 N/A
func (p Presenter) RFMMetrics(r *dashboard_service.Report) []Metric {
	recency, frequency, monetary := utils.NotAvailable, utils.NotAvailable, utils.NotAvailable
	if s := r.RFMSummary; s.Valid() {
		recency = utils.FormatRounded(s.AvgRecency, 1)
		frequency = utils.FormatRounded(s.AvgFrequency, 2)
		monetary = p.Currency(s.AvgMonetary)
	}
	return []Metric{
		{Label: "Average Recency (days)", Value: recency},
		{Label: "Average Frequency", Value: frequency},
		{Label: "Average Monetary", Value: monetary},
	}
}

// stateChartHeight 标题和坐标轴占 60px，每个州一行，至少按 3 行计算
func stateChartHeight(states int) int {
	return 60 + 26*max(states, 3)
}

func dailyPoints(rows []model.DailyOrders) []chart.TimePoint {
	points := make([]chart.TimePoint, len(rows))
	for i, d := range rows {
		points[i] = chart.TimePoint{At: d.Day, Value: float64(d.OrderCount)}
	}
	return points
}

func reviewPoints(rows []model.ReviewScoreRank) []chart.Point {
	points := make([]chart.Point, len(rows))
	for i, r := range rows {
		points[i] = chart.Point{Label: r.Key, Value: float64(r.ReviewScore)}
	}
	return points
}

func salesPoints(rows []model.ProductSales) []chart.Point {
	points := make([]chart.Point, len(rows))
	for i, r := range rows {
		points[i] = chart.Point{Label: r.ProductID, Value: float64(r.ItemCount)}
	}
	return points
}

func statePoints(rows []model.StateCustomers) []chart.Point {
	points := make([]chart.Point, len(rows))
	for i, r := range rows {
		points[i] = chart.Point{Label: r.State, Value: float64(r.CustomerCount)}
	}
	return points
}

func rfmPoints(rows []model.RFM, value func(model.RFM) float64) []chart.Point {
	points := make([]chart.Point, len(rows))
	for i, r := range rows {
		points[i] = chart.Point{Label: r.CustomerID, Value: value(r)}
	}
	return points
}
