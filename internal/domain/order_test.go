package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderPending, OrderProcessing},
		{OrderPending, OrderCancelled},
		{OrderProcessing, OrderShipped},
		{OrderProcessing, OrderCancelled},
		{OrderShipped, OrderDelivered},
		{OrderShipped, OrderCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	all := []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderWithdrawn}
	allowedSet := make(map[[2]OrderStatus]bool)
	for _, tc := range allowed {
		allowedSet[[2]OrderStatus{tc.from, tc.to}] = true
	}
	for _, from := range all {
		for _, to := range all {
			if allowedSet[[2]OrderStatus{from, to}] {
				continue
			}
			assert.False(t, CanTransition(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestParseOrderStatusAliases(t *testing.T) {
	cases := map[string]OrderStatus{
		"pending":    OrderPending,
		"confirmed":  OrderShipped,
		"shipped":    OrderShipped,
		"completed":  OrderDelivered,
		"delivered":  OrderDelivered,
		"rejected":   OrderCancelled,
		"cancelled":  OrderCancelled,
		"withdrawn":  OrderWithdrawn,
		"processing": OrderProcessing,
	}
	for in, want := range cases {
		got, ok := ParseOrderStatus(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	_, ok := ParseOrderStatus("canceled?")
	assert.False(t, ok)
}

func TestOrderRecompute(t *testing.T) {
	o := Order{
		Commission: 5,
		Items: []OrderItem{
			{Price: 20, Cost: 10, Quantity: 3},
			{Price: 50, Cost: 30, Quantity: 1},
		},
	}
	o.Recompute()
	assert.Equal(t, int64(110), o.Total)
	assert.Equal(t, int64(60), o.Cost)
	assert.Equal(t, int64(45), o.Profit)
	assert.Equal(t, o.Total-o.Cost-o.Commission, o.Profit)
}
