package inout

import (
	"ecommerce-dashboard/services/dashboard_service"
)

// DashboardReq 看板查询参数，日期格式 YYYY-MM-DD
type DashboardReq struct {
	Start string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End   string `form:"end" binding:"omitempty,datetime=2006-01-02"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Reset bool   `form:"reset"`
}

// ChartReq 单张图表
type ChartReq struct {
	Name string `uri:"name" binding:"required"`
}

// TableRes 单个聚合表
type TableRes[T any] struct {
	Range dashboard_service.DateRange `json:"range"`
	Total int                         `json:"total"`
	Items []T                         `json:"items"`
}

// NewTableRes 按 limit 截断，limit <= 0 时返回全部
func NewTableRes[T any](r dashboard_service.DateRange, items []T, limit int) TableRes[T] {
	res := TableRes[T]{Range: r, Total: len(items), Items: items}
	if limit > 0 {
		res.Items = dashboard_service.Head(items, limit)
	}
	return res
}
