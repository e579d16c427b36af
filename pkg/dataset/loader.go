package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"ecommerce-dashboard/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrMissingColumn 缺少必需的列
	ErrMissingColumn = errors.New("dataset: missing required column")
	// ErrInvalidValue 某个单元格无法解析
	ErrInvalidValue = errors.New("dataset: invalid value")
)

// 必需的列名
const (
	ColOrderID       = "order_id"
	ColOrderItemID   = "order_item_id"
	ColProductID     = "product_id"
	ColSellerID      = "seller_id"
	ColCustomerID    = "customer_id"
	ColCustomerState = "customer_state"
	ColApprovedAt    = "order_approved_at"
	ColPrice         = "price"
	ColReviewID      = "review_id"
	ColReviewScore   = "review_score"
)

var requiredColumns = []string{
	ColOrderID, ColOrderItemID, ColProductID, ColSellerID, ColCustomerID,
	ColCustomerState, ColApprovedAt, ColPrice, ColReviewID, ColReviewScore,
}

// timestampLayouts ISO8601 的常见写法
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Options 加载选项
type Options struct {
	Comma    rune           // 分隔符，默认逗号
	Location *time.Location // 无时区时间戳使用的时区，默认 UTC
}

// Stats 加载统计
type Stats struct {
	Rows        int       `json:"rows"`
	Skipped     int       `json:"skipped"` // order_approved_at 为空被跳过的行
	MinApproved time.Time `json:"min_approved"`
	MaxApproved time.Time `json:"max_approved"`
}

// LoadFile 从文件读取整张订单行表
func LoadFile(path string, opts Options) ([]model.OrderLine, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	lines, stats, err := Load(f, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return lines, stats, nil
}

// Load 解析分隔文本并按 order_approved_at 稳定排序
func Load(r io.Reader, opts Options) ([]model.OrderLine, Stats, error) {
	var stats Stats

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("read header: %w", err)
	}
	index, err := indexColumns(header)
	if err != nil {
		return nil, stats, err
	}
	reader.FieldsPerRecord = len(header)

	var lines []model.OrderLine
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("read row: %w", err)
		}
		lineNo, _ := reader.FieldPos(0)

		rawApproved := field(record, index, ColApprovedAt)
		if rawApproved == "" {
			stats.Skipped++
			continue
		}

		line, err := parseLine(record, index, loc)
		if err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", lineNo, err)
		}
		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].ApprovedAt.Before(lines[j].ApprovedAt)
	})

	stats.Rows = len(lines)
	if len(lines) > 0 {
		stats.MinApproved = lines[0].ApprovedAt
		stats.MaxApproved = lines[len(lines)-1].ApprovedAt
	}
	if stats.Skipped > 0 {
		log.Printf("⚠️ 跳过 %d 行没有 order_approved_at 的数据", stats.Skipped)
	}

	return lines, stats, nil
}

// indexColumns 建立列名到下标的映射
func indexColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

func field(record []string, index map[string]int, col string) string {
	return strings.TrimSpace(record[index[col]])
}

func parseLine(record []string, index map[string]int, loc *time.Location) (model.OrderLine, error) {
	approvedAt, err := ParseTimestamp(field(record, index, ColApprovedAt), loc)
	if err != nil {
		return model.OrderLine{}, err
	}

	itemID, err := parseWholeNumber(field(record, index, ColOrderItemID))
	if err != nil {
		return model.OrderLine{}, fmt.Errorf("%w: %s: %v", ErrInvalidValue, ColOrderItemID, err)
	}

	price, err := decimal.NewFromString(field(record, index, ColPrice))
	if err != nil {
		return model.OrderLine{}, fmt.Errorf("%w: %s: %v", ErrInvalidValue, ColPrice, err)
	}
	if price.IsNegative() {
		return model.OrderLine{}, fmt.Errorf("%w: %s: negative price %s", ErrInvalidValue, ColPrice, price)
	}

	reviewID := field(record, index, ColReviewID)
	score, err := parseReviewScore(reviewID, field(record, index, ColReviewScore))
	if err != nil {
		return model.OrderLine{}, err
	}
	if reviewID == model.NoReview {
		reviewID = ""
	}

	return model.OrderLine{
		OrderID:       field(record, index, ColOrderID),
		OrderItemID:   itemID,
		ProductID:     field(record, index, ColProductID),
		SellerID:      field(record, index, ColSellerID),
		CustomerID:    field(record, index, ColCustomerID),
		CustomerState: field(record, index, ColCustomerState),
		ApprovedAt:    approvedAt,
		Price:         price,
		ReviewID:      reviewID,
		ReviewScore:   score,
	}, nil
}

// ParseTimestamp 按 ISO8601 的几种写法解析时间，带偏移量的值统一换算到 loc
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s: %q", ErrInvalidValue, ColApprovedAt, value)
}

// parseReviewScore 占位值或空值视为没有评价
func parseReviewScore(reviewID, raw string) (*int, error) {
	if reviewID == model.NoReview || raw == "" || raw == model.NoReview {
		return nil, nil
	}
	score, err := parseWholeNumber(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, ColReviewScore, err)
	}
	return &score, nil
}

// parseWholeNumber 兼容 "3" 和 "3.0" 两种写法
func parseWholeNumber(raw string) (int, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", raw)
	}
	return int(f), nil
}
