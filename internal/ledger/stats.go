package ledger

import (
	"context"

	"github.com/montanaflynn/stats"

	"github.com/vendora/vendora/internal/domain"
)

// Stats is the aggregate view over a set of orders. All money figures are in
// minor currency units.
type Stats struct {
	// AvailableProfit is profit from delivered, not yet withdrawn orders.
	AvailableProfit int64 `json:"available_profit"`
	// LifetimeProfit is profit from delivered orders regardless of
	// withdrawal state.
	LifetimeProfit int64 `json:"lifetime_profit"`
	// TotalSales sums order totals over every order regardless of status.
	// The completed-only variant is CompletedSales.
	TotalSales     int64 `json:"total_sales"`
	CompletedSales int64 `json:"completed_sales"`
	CompletedCount int64 `json:"completed_count"`
	OrderCount     int64 `json:"order_count"`
	// AverageOrderValue is the mean order total across all orders.
	AverageOrderValue float64 `json:"average_order_value"`
}

// ComputeStats derives the profit and sales aggregates from the given
// orders. Pure function, no side effects.
func ComputeStats(orders []*domain.Order) Stats {
	var s Stats
	totals := make([]float64, 0, len(orders))
	for _, o := range orders {
		s.OrderCount++
		s.TotalSales += o.Total
		totals = append(totals, float64(o.Total))

		switch o.Status {
		case domain.OrderDelivered:
			s.AvailableProfit += o.Profit
			s.LifetimeProfit += o.Profit
			s.CompletedSales += o.Total
			s.CompletedCount++
		case domain.OrderWithdrawn:
			s.LifetimeProfit += o.Profit
			s.CompletedSales += o.Total
			s.CompletedCount++
		}
	}
	if len(totals) > 0 {
		if mean, err := stats.Mean(totals); err == nil {
			s.AverageOrderValue = mean
		}
	}
	return s
}

// Snapshot loads every order and computes the aggregates. Convenience for
// the admin dashboard.
func (l *Ledger) Snapshot(ctx context.Context) (Stats, error) {
	orders, err := l.orders.ListAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(orders), nil
}

// Orders exposes the order repository for read-side consumers (dashboard,
// exports) without widening the ledger API.
func (l *Ledger) Orders() OrderRepository { return l.orders }

// Withdrawals exposes the withdrawal repository for read-side consumers.
func (l *Ledger) Withdrawals() WithdrawalRepository { return l.withdrawals }
