package app

import (
	"go.uber.org/zap"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/ledger"
	"github.com/vendora/vendora/pkg/metrics"
)

// subscribeLedgerEvents records the dashboard counters from the order
// lifecycle events. Subscribers run async so checkout latency never waits on
// the metric store.
func (a *Application) subscribeLedgerEvents() {
	err := a.bus.SubscribeAsync(ledger.TopicOrderCreated, func(o *domain.Order) {
		metrics.Record(metrics.OrdersCreated, 1)
		metrics.Record(metrics.SalesAmount, float64(o.Total))
	}, false)
	if err != nil {
		zap.L().Error("failed to subscribe order created", zap.Error(err))
	}

	err = a.bus.SubscribeAsync(ledger.TopicOrderStatusChanged, func(o *domain.Order) {
		switch o.Status {
		case domain.OrderDelivered:
			metrics.Record(metrics.OrdersDelivered, 1)
		case domain.OrderCancelled:
			metrics.Record(metrics.OrdersCancelled, 1)
		}
	}, false)
	if err != nil {
		zap.L().Error("failed to subscribe order status", zap.Error(err))
	}

	err = a.bus.SubscribeAsync(ledger.TopicOrdersWithdrawn, func(args ...interface{}) {
		if len(args) == 2 {
			if amount, isInt := args[1].(int64); isInt {
				metrics.Record(metrics.WithdrawnAmount, float64(amount))
			}
		}
	}, false)
	if err != nil {
		zap.L().Error("failed to subscribe withdrawals", zap.Error(err))
	}
}
