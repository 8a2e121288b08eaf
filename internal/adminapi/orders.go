package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/webserver"
)

func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/export", exportOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiPUT("/orders/:id/status", updateOrderStatus)
	webserver.ApiPOST("/orders/:id/payment", confirmOrderPayment)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Order{})
	if status := c.QueryParam("status"); status != "" {
		st, valid := domain.ParseOrderStatus(status)
		if !valid {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", status)
		}
		base = base.Where("status = ?", st)
	}
	if cid := c.QueryParam("customer_id"); cid != "" {
		base = base.Where("customer_id = ?", cid)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	var rows []domain.Order
	if err := base.Preload("Items").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var o domain.Order
	if err := GetDB(c).Preload("Items").Where("id = ?", id).First(&o).Error; err != nil {
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", nil)
	}
	return ok(c, o)
}

type statusPayload struct {
	Status string `json:"status" form:"status"`
}

// updateOrderStatus moves an order along the status machine through the
// ledger, so cancellations restock and delivery stamps the timestamp.
func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}
	next, valid := domain.ParseOrderStatus(payload.Status)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", payload.Status)
	}

	order, err := GetLedger(c).TransitionStatus(c.Request().Context(), id, next)
	if err != nil {
		return failLedger(c, err)
	}
	oplog(c, "order_status", fmt.Sprintf("order %d -> %s", id, next))
	return ok(c, order)
}

// confirmOrderPayment records a manual payment confirmation from the admin
// panel, e.g. for bank transfer orders.
func confirmOrderPayment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	order, err := GetLedger(c).ConfirmPayment(c.Request().Context(), id)
	if err != nil {
		return failLedger(c, err)
	}
	oplog(c, "order_payment", fmt.Sprintf("order %d paid", id))
	return ok(c, order)
}

type orderCsvRow struct {
	ID         int64  `csv:"id"`
	CustomerID int64  `csv:"customer_id"`
	Status     string `csv:"status"`
	Payment    string `csv:"payment_status"`
	Total      int64  `csv:"total"`
	Cost       int64  `csv:"cost"`
	Commission int64  `csv:"commission"`
	Profit     int64  `csv:"profit"`
	CreatedAt  string `csv:"created_at"`
}

// exportOrders streams the full order book as CSV for offline accounting.
func exportOrders(c echo.Context) error {
	var orders []domain.Order
	base := GetDB(c).Model(&domain.Order{})
	if status := c.QueryParam("status"); status != "" {
		st, valid := domain.ParseOrderStatus(status)
		if !valid {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status", status)
		}
		base = base.Where("status = ?", st)
	}
	if err := base.Order("created_at ASC").Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}

	rows := make([]orderCsvRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderCsvRow{
			ID:         o.ID,
			CustomerID: o.CustomerID,
			Status:     string(o.Status),
			Payment:    o.PaymentStatus,
			Total:      o.Total,
			Cost:       o.Cost,
			Commission: o.Commission,
			Profit:     o.Profit,
			CreatedAt:  o.CreatedAt.Format(time.RFC3339),
		})
	}

	data, err := gocsv.MarshalString(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to render csv", err.Error())
	}
	oplog(c, "export_orders", fmt.Sprintf("%d rows", len(rows)))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(data))
}
