package dashboard_service

import (
	"time"

	"ecommerce-dashboard/model"
	"ecommerce-dashboard/pkg/monitoring"

	"github.com/shopspring/decimal"
)

// DefaultTopN 排行图默认展示数量
const DefaultTopN = 5

// Dashboard 持有加载好的订单行表，每次按区间重新计算全部指标
type Dashboard struct {
	lines        []model.OrderLine
	defaultRange DateRange
	topN         int
	location     *time.Location
}

// Option 看板选项
type Option func(*Dashboard)

// WithTopN 设置排行图展示数量
func WithTopN(n int) Option {
	return func(d *Dashboard) {
		if n > 0 {
			d.topN = n
		}
	}
}

// WithLocation 设置解析日期参数使用的时区
func WithLocation(loc *time.Location) Option {
	return func(d *Dashboard) {
		if loc != nil {
			d.location = loc
		}
	}
}

// NewDashboard 创建看板，lines 加载后不再修改
func NewDashboard(lines []model.OrderLine, opts ...Option) *Dashboard {
	d := &Dashboard{
		lines:        lines,
		defaultRange: DefaultRange(lines),
		topN:         DefaultTopN,
		location:     time.UTC,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Report 一个区间内的全部看板数据
type Report struct {
	Range        DateRange       `json:"range"`
	Lines        int             `json:"lines"`
	TotalOrders  int             `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`

	DailyOrders          []model.DailyOrders     `json:"daily_orders"`
	ProductReviewRanking []model.ReviewScoreRank `json:"product_review_ranking"`
	ProductSalesRanking  []model.ProductSales    `json:"product_sales_ranking"`
	CustomersByState     []model.StateCustomers  `json:"customers_by_state"`
	SellerReviewRanking  []model.ReviewScoreRank `json:"seller_review_ranking"`
	RFM                  []model.RFM             `json:"rfm"`
	RFMSummary           RFMSummary              `json:"rfm_summary"`

	TopN int `json:"top_n"`
}

// DefaultRange 数据集的默认区间
func (d *Dashboard) DefaultRange() DateRange {
	return d.defaultRange
}

// Size 数据集行数
func (d *Dashboard) Size() int {
	return len(d.lines)
}

// ParseRange 解析日期参数，缺失时使用默认区间
func (d *Dashboard) ParseRange(start, end string) (DateRange, error) {
	return ParseDateRange(start, end, d.defaultRange, d.location)
}

// Filter 返回区间内的订单行
func (d *Dashboard) Filter(r DateRange) []model.OrderLine {
	return FilterByRange(d.lines, r)
}

// Build 过滤并重新计算所有聚合，不做任何缓存
func (d *Dashboard) Build(r DateRange) *Report {
	start := time.Now()

	filtered := d.Filter(r)
	rfm := RFMOf(filtered)

	report := &Report{
		Range:                r,
		Lines:                len(filtered),
		TotalOrders:          CountDistinctOrders(filtered),
		TotalRevenue:         SumPrice(filtered),
		DailyOrders:          DailyOrdersOf(filtered),
		ProductReviewRanking: ProductReviewRanking(filtered),
		ProductSalesRanking:  ProductSalesRanking(filtered),
		CustomersByState:     CustomersByState(filtered),
		SellerReviewRanking:  SellerReviewRanking(filtered),
		RFM:                  rfm,
		RFMSummary:           SummarizeRFM(rfm),
		TopN:                 d.topN,
	}

	monitoring.RecordDashboardBuild(len(filtered), time.Since(start))
	return report
}

// TopProductReviews 评分最高的商品
func (r *Report) TopProductReviews() []model.ReviewScoreRank {
	return Head(r.ProductReviewRanking, r.TopN)
}

// TopProductSales 销量最高的商品
func (r *Report) TopProductSales() []model.ProductSales {
	return Head(r.ProductSalesRanking, r.TopN)
}

// TopSellerReviews 评分最高的卖家
func (r *Report) TopSellerReviews() []model.ReviewScoreRank {
	return Head(r.SellerReviewRanking, r.TopN)
}

// StatesByCustomers 各州客户数，降序
func (r *Report) StatesByCustomers() []model.StateCustomers {
	return SortStatesByCustomers(r.CustomersByState)
}

// TopRecency 最近下单的客户
func (r *Report) TopRecency() []model.RFM {
	return TopByRecency(r.RFM, r.TopN)
}

// TopFrequency 下单次数最多的客户
func (r *Report) TopFrequency() []model.RFM {
	return TopByFrequency(r.RFM, r.TopN)
}

// TopMonetary 消费金额最高的客户
func (r *Report) TopMonetary() []model.RFM {
	return TopByMonetary(r.RFM, r.TopN)
}
