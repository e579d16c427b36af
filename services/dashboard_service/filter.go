package dashboard_service

import (
	"errors"
	"fmt"
	"time"

	"ecommerce-dashboard/model"
)

// DateLayout 日期参数格式
const DateLayout = "2006-01-02"

// ErrInvalidRange 开始日期晚于结束日期
var ErrInvalidRange = errors.New("开始日期不能晚于结束日期")

// DateRange 闭区间 [Start, End]
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains 时间是否落在区间内（含两端）
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// IsZero 是否为空区间
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// Days 区间覆盖的自然日数
func (r DateRange) Days() int {
	if r.End.Before(r.Start) {
		return 0
	}
	return daysBetween(model.TruncateDay(r.Start), model.TruncateDay(r.End)) + 1
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s ~ %s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
}

// DefaultRange 默认区间：最早日期零点到最晚日期的次日零点，保证最后一天的订单被包含
func DefaultRange(lines []model.OrderLine) DateRange {
	if len(lines) == 0 {
		return DateRange{}
	}
	minAt, maxAt := lines[0].ApprovedAt, lines[0].ApprovedAt
	for _, l := range lines[1:] {
		if l.ApprovedAt.Before(minAt) {
			minAt = l.ApprovedAt
		}
		if l.ApprovedAt.After(maxAt) {
			maxAt = l.ApprovedAt
		}
	}
	return DateRange{
		Start: model.TruncateDay(minAt),
		End:   model.TruncateDay(maxAt).AddDate(0, 0, 1),
	}
}

// ParseDateRange 解析用户输入的日期，缺失的一端使用 fallback
func ParseDateRange(start, end string, fallback DateRange, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := fallback

	if start != "" {
		t, err := time.ParseInLocation(DateLayout, start, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("开始日期格式错误: %w", err)
		}
		r.Start = t
	}
	if end != "" {
		t, err := time.ParseInLocation(DateLayout, end, loc)
		if err != nil {
			return DateRange{}, fmt.Errorf("结束日期格式错误: %w", err)
		}
		r.End = t
	}

	if r.Start.After(r.End) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// FilterByRange 选出 order_approved_at 落在区间内的订单行，保持原有顺序
func FilterByRange(lines []model.OrderLine, r DateRange) []model.OrderLine {
	filtered := make([]model.OrderLine, 0, len(lines))
	for _, l := range lines {
		if r.Contains(l.ApprovedAt) {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

// daysBetween 两个零点日期之间的整天数
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
