package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// NoReview 数据集中表示"该订单行没有评价"的占位值
const NoReview = "no_review"

// OrderLine 订单行，数据集中的一行，加载后不可修改
type OrderLine struct {
	OrderID       string          `json:"order_id"`       // 订单号，多个订单行可共享
	OrderItemID   int             `json:"order_item_id"`  // 订单内的行序号
	ProductID     string          `json:"product_id"`     // 商品ID
	SellerID      string          `json:"seller_id"`      // 卖家ID
	CustomerID    string          `json:"customer_id"`    // 客户ID
	CustomerState string          `json:"customer_state"` // 客户所在州
	ApprovedAt    time.Time       `json:"order_approved_at"`
	Price         decimal.Decimal `json:"price"`
	ReviewID      string          `json:"review_id,omitempty"`
	ReviewScore   *int            `json:"review_score,omitempty"` // nil 表示没有评价
}

// HasReview 是否有评价
func (l OrderLine) HasReview() bool {
	return l.ReviewScore != nil
}

// ApprovedDate 审核时间截断到日期
func (l OrderLine) ApprovedDate() time.Time {
	return TruncateDay(l.ApprovedAt)
}

// TruncateDay 截断到当天零点，保留时区
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
