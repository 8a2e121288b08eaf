package storeapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/ledger"
	"github.com/vendora/vendora/internal/webserver"
	"github.com/vendora/vendora/pkg/metrics"
)

func registerCheckoutRoutes() {
	webserver.StorePOST("/checkout", checkout)
	webserver.StoreGET("/orders", listMyOrders)
	webserver.StoreGET("/orders/:id", getMyOrder)
	webserver.StorePOST("/orders/:id/pay", payMyOrder)
	webserver.StorePOST("/orders/:id/cancel", cancelMyOrder)
}

// shopOrder is the customer view of an order. Cost, commission and profit are
// merchant internals and stay hidden.
type shopOrder struct {
	ID            int64              `json:"id,string"`
	Items         []domain.OrderItem `json:"items"`
	Total         int64              `json:"total"`
	Status        domain.OrderStatus `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	CreatedAt     time.Time          `json:"created_at"`
}

func toShopOrder(o *domain.Order) shopOrder {
	items := make([]domain.OrderItem, len(o.Items))
	copy(items, o.Items)
	for i := range items {
		items[i].Cost = 0
	}
	return shopOrder{
		ID:            o.ID,
		Items:         items,
		Total:         o.Total,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
	}
}

type checkoutPayload struct {
	Lines []ledger.OrderLine `json:"lines"`
}

// checkout creates a pending order from the cart. The ledger snapshots prices
// and reserves stock atomically; an out of stock line rejects the whole cart.
func checkout(c echo.Context) error {
	cid := currentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Customer token required")
	}
	var payload checkoutPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart")
	}

	order, err := GetLedger(c).CreateOrder(c.Request().Context(), cid, payload.Lines)
	if err != nil {
		if errors.Is(err, ledger.ErrOutOfStock) || errors.Is(err, ledger.ErrProductNotFound) {
			metrics.Record(metrics.CheckoutRejections, 1)
		}
		return failLedger(c, err)
	}
	return ok(c, toShopOrder(order))
}

func listMyOrders(c echo.Context) error {
	cid := currentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Customer token required")
	}
	var orders []domain.Order
	if err := GetDB(c).Preload("Items").Where("customer_id = ?", cid).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load orders")
	}
	rows := make([]shopOrder, 0, len(orders))
	for i := range orders {
		rows = append(rows, toShopOrder(&orders[i]))
	}
	return ok(c, rows)
}

// loadOwnOrder fetches the order and enforces ownership.
func loadOwnOrder(c echo.Context) (*domain.Order, error) {
	cid := currentCustomerID(c)
	if cid == 0 {
		return nil, fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Customer token required")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return nil, fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID")
	}
	var o domain.Order
	if err := GetDB(c).Preload("Items").Where("id = ? AND customer_id = ?", id, cid).First(&o).Error; err != nil {
		return nil, fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	}
	return &o, nil
}

func getMyOrder(c echo.Context) error {
	o, err := loadOwnOrder(c)
	if err != nil {
		return err
	}
	return ok(c, toShopOrder(o))
}

// payMyOrder runs the simulated payment: the order is immediately confirmed
// as paid and moves to processing.
func payMyOrder(c echo.Context) error {
	o, err := loadOwnOrder(c)
	if err != nil {
		return err
	}
	ldg := GetLedger(c)
	paid, err := ldg.ConfirmPayment(c.Request().Context(), o.ID)
	if err != nil {
		return failLedger(c, err)
	}
	if paid.Status == domain.OrderPending {
		if moved, err := ldg.TransitionStatus(c.Request().Context(), paid.ID, domain.OrderProcessing); err == nil {
			paid = moved
		}
	}
	return ok(c, toShopOrder(paid))
}

// cancelMyOrder lets the customer cancel before the order ships. Shipped
// orders stay cancellable from the admin panel only.
func cancelMyOrder(c echo.Context) error {
	o, err := loadOwnOrder(c)
	if err != nil {
		return err
	}
	if o.Status != domain.OrderPending && o.Status != domain.OrderProcessing {
		return fail(c, http.StatusConflict, "INVALID_TRANSITION", "The order can no longer be cancelled")
	}
	cancelled, err := GetLedger(c).TransitionStatus(c.Request().Context(), o.ID, domain.OrderCancelled)
	if err != nil {
		return failLedger(c, err)
	}
	return ok(c, toShopOrder(cancelled))
}
