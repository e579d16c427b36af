package dashboard_service

import (
	"testing"
	"time"

	"ecommerce-dashboard/model"

	"github.com/shopspring/decimal"
)

type lineRow struct {
	order, product, seller, customer, state string
	at                                      string
	price                                   string
	score                                   int // 0 表示没有评价
}

func buildLines(t *testing.T, rows ...lineRow) []model.OrderLine {
	t.Helper()

	lines := make([]model.OrderLine, 0, len(rows))
	for i, s := range rows {
		at, err := time.Parse("2006-01-02 15:04:05", s.at)
		if err != nil {
			t.Fatalf("row %d: bad timestamp %q: %v", i, s.at, err)
		}
		line := model.OrderLine{
			OrderID:       s.order,
			OrderItemID:   i + 1,
			ProductID:     s.product,
			SellerID:      s.seller,
			CustomerID:    s.customer,
			CustomerState: s.state,
			ApprovedAt:    at,
			Price:         decimal.RequireFromString(s.price),
		}
		if s.score > 0 {
			score := s.score
			line.ReviewID = "R" + s.order
			line.ReviewScore = &score
		}
		lines = append(lines, line)
	}
	return lines
}

// exampleLines 三行的端到端样例
func exampleLines(t *testing.T) []model.OrderLine {
	return buildLines(t,
		lineRow{order: "O1", product: "P1", seller: "S1", customer: "C1", state: "SP", at: "2024-01-01 10:00:00", price: "10", score: 5},
		lineRow{order: "O1", product: "P1", seller: "S2", customer: "C1", state: "SP", at: "2024-01-01 10:00:00", price: "5"},
		lineRow{order: "O2", product: "P2", seller: "S1", customer: "C2", state: "RJ", at: "2024-01-02 09:00:00", price: "20", score: 3},
	)
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		t.Fatalf("bad date %q: %v", value, err)
	}
	return d
}
