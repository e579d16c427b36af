package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyOrders 每日订单汇总
type DailyOrders struct {
	Day        time.Time       `json:"day"`
	OrderCount int             `json:"order_count"` // 去重后的订单数
	Revenue    decimal.Decimal `json:"revenue"`     // 当天所有订单行金额之和
}

// ReviewScoreRank 评分排行（按商品或卖家）
type ReviewScoreRank struct {
	Key         string `json:"key"`
	ReviewScore int    `json:"review_score"`
}

// ProductSales 商品销量（订单行数）
type ProductSales struct {
	ProductID string `json:"product_id"`
	ItemCount int    `json:"item_count"`
}

// StateCustomers 各州客户数
type StateCustomers struct {
	State         string `json:"customer_state"`
	CustomerCount int    `json:"customer_count"`
}

// RFM 客户的 Recency/Frequency/Monetary
type RFM struct {
	CustomerID string          `json:"customer_id"`
	Frequency  int             `json:"frequency"` // 去重订单数
	Monetary   decimal.Decimal `json:"monetary"`  // 消费总额
	Recency    int             `json:"recency"`   // 距最近一次下单的天数
}
