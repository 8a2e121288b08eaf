package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/vendora/vendora/config"
	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/ledger"
	"github.com/vendora/vendora/internal/webserver"
	"github.com/vendora/vendora/pkg/common"
)

// InitRouter registers every admin panel endpoint on the JWT protected /api
// group plus the public login route.
func InitRouter() {
	registerAuthRoutes()
	registerDashboardRoutes()
	registerProductRoutes()
	registerCategoryRoutes()
	registerOrderRoutes()
	registerCustomerRoutes()
	registerWithdrawalRoutes()
	registerBannerRoutes()
	registerChatRoutes()
}

// GetDB returns the request scoped gorm handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextDBKey).(*gorm.DB)
}

// GetLedger returns the order ledger service.
func GetLedger(c echo.Context) *ledger.Ledger {
	return c.Get(webserver.ContextLedgerKey).(*ledger.Ledger)
}

// GetConfig returns the application configuration.
func GetConfig(c echo.Context) *config.AppConfig {
	return c.Get(webserver.ContextConfigKey).(*config.AppConfig)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":      0,
		"data":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func parsePagination(c echo.Context) (page, pageSize int) {
	page = cast.ToInt(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize = cast.ToInt(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > 500 {
		pageSize = 20
	}
	return page, pageSize
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// failLedger maps a ledger error onto a distinct API error code so the admin
// UI can tell an out-of-stock rejection from a bad transition.
func failLedger(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ledger.ErrEmptyOrder):
		return fail(c, http.StatusBadRequest, "EMPTY_ORDER", "Order has no valid items", err.Error())
	case errors.Is(err, ledger.ErrProductNotFound):
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found or unavailable", err.Error())
	case errors.Is(err, ledger.ErrOutOfStock):
		return fail(c, http.StatusConflict, "OUT_OF_STOCK", "Insufficient stock", err.Error())
	case errors.Is(err, ledger.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found", err.Error())
	case errors.Is(err, ledger.ErrInvalidTransition):
		return fail(c, http.StatusConflict, "INVALID_TRANSITION", "Order status transition not allowed", err.Error())
	case errors.Is(err, ledger.ErrInvalidWithdrawalState):
		return fail(c, http.StatusConflict, "INVALID_WITHDRAWAL_STATE", "Order is not withdrawable", err.Error())
	case errors.Is(err, ledger.ErrWithdrawalNotFound):
		return fail(c, http.StatusNotFound, "WITHDRAWAL_NOT_FOUND", "Withdrawal not found", err.Error())
	case errors.Is(err, ledger.ErrPersistence):
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Storage failure", err.Error())
	default:
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected failure", err.Error())
	}
}

// currentOprName extracts the operator username from the verified JWT.
func currentOprName(c echo.Context) string {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	return cast.ToString(claims["usr"])
}

func currentOprID(c echo.Context) int64 {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0
	}
	return cast.ToInt64(claims["uid"])
}

// oplog records an operator action in the audit trail. Failures only log.
func oplog(c echo.Context, action, desc string) {
	log := domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprName:   currentOprName(c),
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	}
	GetDB(c).Create(&log)
}
