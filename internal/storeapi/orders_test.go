package storeapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vendora/vendora/internal/domain"
)

func TestToShopOrderHidesMerchantFields(t *testing.T) {
	now := time.Now()
	o := &domain.Order{
		ID:            42,
		CustomerID:    7,
		Total:         120,
		Cost:          70,
		Commission:    5,
		Profit:        45,
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, Price: 60, Cost: 35},
		},
	}

	view := toShopOrder(o)

	assert.Equal(t, int64(42), view.ID)
	assert.Equal(t, int64(120), view.Total)
	assert.Equal(t, domain.OrderPending, view.Status)
	assert.Len(t, view.Items, 1)
	assert.Zero(t, view.Items[0].Cost, "item cost must not leak to the storefront")
	assert.Equal(t, int64(60), view.Items[0].Price)

	// the source order is untouched
	assert.Equal(t, int64(35), o.Items[0].Cost)
}

func TestToShopProduct(t *testing.T) {
	p := domain.Product{
		ID:         9,
		Sku:        "SKU-9",
		Name:       "widget",
		Price:      250,
		Cost:       90,
		MinPrice:   200,
		MaxPrice:   300,
		Stock:      12,
		CategoryID: 3,
	}
	view := toShopProduct(p)
	assert.Equal(t, int64(250), view.Price)
	assert.Equal(t, int64(12), view.Stock)
	assert.Equal(t, "SKU-9", view.Sku)
}
