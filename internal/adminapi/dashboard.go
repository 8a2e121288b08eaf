package adminapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/vendora/vendora/internal/webserver"
	"github.com/vendora/vendora/pkg/metrics"
)

func registerDashboardRoutes() {
	webserver.ApiGET("/dashboard/stats", getDashboardStats)
	webserver.ApiGET("/dashboard/metrics/:name", getDashboardMetric)
}

// getDashboardStats returns the ledger aggregates: available and lifetime
// profit, sales totals and the average order value.
func getDashboardStats(c echo.Context) error {
	stats, err := GetLedger(c).Snapshot(c.Request().Context())
	if err != nil {
		return failLedger(c, err)
	}
	return ok(c, stats)
}

var dashboardMetrics = map[string]string{
	"orders_created":      metrics.OrdersCreated,
	"orders_delivered":    metrics.OrdersDelivered,
	"orders_cancelled":    metrics.OrdersCancelled,
	"sales_amount":        metrics.SalesAmount,
	"withdrawn_amount":    metrics.WithdrawnAmount,
	"checkout_rejections": metrics.CheckoutRejections,
}

// getDashboardMetric returns the raw time series of one counter for the
// dashboard charts. Defaults to the last 24 hours.
func getDashboardMetric(c echo.Context) error {
	name, found := dashboardMetrics[c.Param("name")]
	if !found {
		return fail(c, http.StatusNotFound, "METRIC_NOT_FOUND", "Unknown metric", c.Param("name"))
	}

	end := time.Now().Unix()
	start := end - 86400
	if s := c.QueryParam("start"); s != "" {
		start = cast.ToInt64(s)
	}
	if e := c.QueryParam("end"); e != "" {
		end = cast.ToInt64(e)
	}

	points, err := metrics.Range(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to query metric", err.Error())
	}
	return ok(c, points)
}
