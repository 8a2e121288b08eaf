package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vendora/vendora/internal/domain"
)

func TestComputeStats(t *testing.T) {
	orders := []*domain.Order{
		{Total: 100, Cost: 60, Profit: 40, Status: domain.OrderDelivered},
		{Total: 200, Cost: 120, Profit: 80, Status: domain.OrderWithdrawn},
		{Total: 50, Cost: 30, Profit: 20, Status: domain.OrderPending},
		{Total: 80, Cost: 50, Profit: 30, Status: domain.OrderCancelled},
	}

	s := ComputeStats(orders)

	assert.Equal(t, int64(40), s.AvailableProfit, "only delivered and not withdrawn")
	assert.Equal(t, int64(120), s.LifetimeProfit, "delivered plus withdrawn")
	assert.Equal(t, int64(430), s.TotalSales, "all orders regardless of status")
	assert.Equal(t, int64(300), s.CompletedSales)
	assert.Equal(t, int64(2), s.CompletedCount)
	assert.Equal(t, int64(4), s.OrderCount)
	assert.InDelta(t, 107.5, s.AverageOrderValue, 0.001)
}

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil)
	assert.Zero(t, s.AvailableProfit)
	assert.Zero(t, s.LifetimeProfit)
	assert.Zero(t, s.TotalSales)
	assert.Zero(t, s.OrderCount)
	assert.Zero(t, s.AverageOrderValue)
}
