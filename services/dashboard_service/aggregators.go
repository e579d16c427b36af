package dashboard_service

import (
	"sort"
	"time"

	"ecommerce-dashboard/model"

	"github.com/shopspring/decimal"
)

// DailyOrdersOf 按自然日汇总：去重订单数与金额合计，没有订单的日期不输出
func DailyOrdersOf(lines []model.OrderLine) []model.DailyOrders {
	type bucket struct {
		orders  map[string]struct{}
		revenue decimal.Decimal
	}

	// time.Time 带时区指针，不能直接作为 map 的键
	buckets := make(map[string]*bucket)
	days := make([]time.Time, 0)
	for _, l := range lines {
		day := l.ApprovedDate()
		key := day.Format(DateLayout)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{orders: make(map[string]struct{})}
			buckets[key] = b
			days = append(days, day)
		}
		b.orders[l.OrderID] = struct{}{}
		b.revenue = b.revenue.Add(l.Price)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	result := make([]model.DailyOrders, 0, len(days))
	for _, day := range days {
		b := buckets[day.Format(DateLayout)]
		result = append(result, model.DailyOrders{
			Day:        day,
			OrderCount: len(b.orders),
			Revenue:    b.revenue,
		})
	}
	return result
}

// ProductReviewRanking 商品评分合计排行，没有评价的订单行不参与
func ProductReviewRanking(lines []model.OrderLine) []model.ReviewScoreRank {
	return reviewRanking(lines, func(l model.OrderLine) string { return l.ProductID })
}

// SellerReviewRanking 卖家评分合计排行，没有评价的订单行不参与
func SellerReviewRanking(lines []model.OrderLine) []model.ReviewScoreRank {
	return reviewRanking(lines, func(l model.OrderLine) string { return l.SellerID })
}

func reviewRanking(lines []model.OrderLine, keyOf func(model.OrderLine) string) []model.ReviewScoreRank {
	sums := make(map[string]int)
	for _, l := range lines {
		if !l.HasReview() {
			continue
		}
		sums[keyOf(l)] += *l.ReviewScore
	}

	result := make([]model.ReviewScoreRank, 0, len(sums))
	for _, key := range sortedKeys(sums) {
		result = append(result, model.ReviewScoreRank{Key: key, ReviewScore: sums[key]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ReviewScore > result[j].ReviewScore
	})
	return result
}

// ProductSalesRanking 商品销量排行，每个订单行都计数
func ProductSalesRanking(lines []model.OrderLine) []model.ProductSales {
	counts := make(map[string]int)
	for _, l := range lines {
		counts[l.ProductID]++
	}

	result := make([]model.ProductSales, 0, len(counts))
	for _, key := range sortedKeys(counts) {
		result = append(result, model.ProductSales{ProductID: key, ItemCount: counts[key]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ItemCount > result[j].ItemCount
	})
	return result
}

// CustomersByState 各州去重客户数，按州名排序
func CustomersByState(lines []model.OrderLine) []model.StateCustomers {
	customers := make(map[string]map[string]struct{})
	for _, l := range lines {
		set, ok := customers[l.CustomerState]
		if !ok {
			set = make(map[string]struct{})
			customers[l.CustomerState] = set
		}
		set[l.CustomerID] = struct{}{}
	}

	result := make([]model.StateCustomers, 0, len(customers))
	for _, state := range sortedKeys(customers) {
		result = append(result, model.StateCustomers{State: state, CustomerCount: len(customers[state])})
	}
	return result
}

// SortStatesByCustomers 按客户数降序排列，返回新切片
func SortStatesByCustomers(states []model.StateCustomers) []model.StateCustomers {
	sorted := append([]model.StateCustomers(nil), states...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CustomerCount > sorted[j].CustomerCount
	})
	return sorted
}

// RFMOf 计算每个客户的 RFM；recency 以整个过滤集中最晚的审核日期为基准
func RFMOf(lines []model.OrderLine) []model.RFM {
	type acc struct {
		orders   map[string]struct{}
		monetary decimal.Decimal
		latest   time.Time
	}

	var reference time.Time
	customers := make(map[string]*acc)
	for _, l := range lines {
		day := l.ApprovedDate()
		if day.After(reference) {
			reference = day
		}

		a, ok := customers[l.CustomerID]
		if !ok {
			a = &acc{orders: make(map[string]struct{}), latest: day}
			customers[l.CustomerID] = a
		}
		a.orders[l.OrderID] = struct{}{}
		a.monetary = a.monetary.Add(l.Price)
		if day.After(a.latest) {
			a.latest = day
		}
	}

	result := make([]model.RFM, 0, len(customers))
	for _, id := range sortedKeys(customers) {
		a := customers[id]
		result = append(result, model.RFM{
			CustomerID: id,
			Frequency:  len(a.orders),
			Monetary:   a.monetary,
			Recency:    daysBetween(a.latest, reference),
		})
	}
	return result
}

// RFMSummary RFM 平均值；Customers 为 0 时没有数据
type RFMSummary struct {
	Customers    int             `json:"customers"`
	AvgRecency   float64         `json:"avg_recency"`
	AvgFrequency float64         `json:"avg_frequency"`
	AvgMonetary  decimal.Decimal `json:"avg_monetary"`
}

// Valid 是否有可用的平均值
func (s RFMSummary) Valid() bool {
	return s.Customers > 0
}

// SummarizeRFM 计算 RFM 平均值，空集合返回无数据状态
func SummarizeRFM(rows []model.RFM) RFMSummary {
	if len(rows) == 0 {
		return RFMSummary{}
	}

	var recency, frequency int
	monetary := decimal.Zero
	for _, r := range rows {
		recency += r.Recency
		frequency += r.Frequency
		monetary = monetary.Add(r.Monetary)
	}

	n := len(rows)
	return RFMSummary{
		Customers:    n,
		AvgRecency:   float64(recency) / float64(n),
		AvgFrequency: float64(frequency) / float64(n),
		AvgMonetary:  monetary.Div(decimal.NewFromInt(int64(n))),
	}
}

// TopByRecency 最近下单的客户优先
func TopByRecency(rows []model.RFM, n int) []model.RFM {
	return topRFM(rows, n, func(a, b model.RFM) bool { return a.Recency < b.Recency })
}

// TopByFrequency 订单数最多的客户优先
func TopByFrequency(rows []model.RFM, n int) []model.RFM {
	return topRFM(rows, n, func(a, b model.RFM) bool { return a.Frequency > b.Frequency })
}

// TopByMonetary 消费金额最高的客户优先
func TopByMonetary(rows []model.RFM, n int) []model.RFM {
	return topRFM(rows, n, func(a, b model.RFM) bool { return a.Monetary.GreaterThan(b.Monetary) })
}

func topRFM(rows []model.RFM, n int, less func(a, b model.RFM) bool) []model.RFM {
	sorted := append([]model.RFM(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return Head(sorted, n)
}

// CountDistinctOrders 去重订单数
func CountDistinctOrders(lines []model.OrderLine) int {
	orders := make(map[string]struct{})
	for _, l := range lines {
		orders[l.OrderID] = struct{}{}
	}
	return len(orders)
}

// SumPrice 金额合计
func SumPrice(lines []model.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price)
	}
	return total
}

// Head 取前 n 个，不足 n 个时返回全部；n <= 0 表示不限制
func Head[T any](items []T, n int) []T {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
