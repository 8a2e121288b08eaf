package storeapi

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/vendora/vendora/config"
	"github.com/vendora/vendora/internal/ledger"
	"github.com/vendora/vendora/internal/webserver"
)

// InitRouter registers the storefront endpoints: the public catalog under
// /shop and the customer account routes under the token protected /store.
func InitRouter() {
	registerCustomerAuthRoutes()
	registerCatalogRoutes()
	registerCheckoutRoutes()
	registerChatRoutes()
}

func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextDBKey).(*gorm.DB)
}

func GetLedger(c echo.Context) *ledger.Ledger {
	return c.Get(webserver.ContextLedgerKey).(*ledger.Ledger)
}

func GetConfig(c echo.Context) *config.AppConfig {
	return c.Get(webserver.ContextConfigKey).(*config.AppConfig)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

// currentCustomerID reads the customer id claim from the verified token.
// Zero means the token is not a customer token.
func currentCustomerID(c echo.Context) int64 {
	token, found := c.Get("user").(*jwt.Token)
	if !found {
		return 0
	}
	claims, found := token.Claims.(jwt.MapClaims)
	if !found {
		return 0
	}
	return cast.ToInt64(claims["cid"])
}

// failLedger maps ledger errors onto shopper friendly responses. The error
// kind stays distinguishable through the code field.
func failLedger(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrEmptyOrder):
		return fail(c, http.StatusBadRequest, "EMPTY_ORDER", "Your cart is empty or has invalid quantities")
	case errors.Is(err, ledger.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "One of the products is no longer available")
	case errors.Is(err, ledger.ErrOutOfStock):
		return fail(c, http.StatusConflict, "OUT_OF_STOCK", "Not enough stock to fulfil the order")
	case errors.Is(err, ledger.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, ledger.ErrInvalidTransition):
		return fail(c, http.StatusConflict, "INVALID_TRANSITION", "The order cannot change to that state")
	case errors.Is(err, ledger.ErrPersistence):
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Temporary storage failure, try again")
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure")
	}
}
