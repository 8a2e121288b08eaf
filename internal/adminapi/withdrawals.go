package adminapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/webserver"
)

func registerWithdrawalRoutes() {
	webserver.ApiGET("/withdrawals", listWithdrawals)
	webserver.ApiGET("/withdrawals/:id", getWithdrawal)
	webserver.ApiPOST("/withdrawals", requestWithdrawal)
	webserver.ApiPOST("/withdrawals/:id/approve", approveWithdrawal)
	webserver.ApiPOST("/withdrawals/:id/reject", rejectWithdrawal)
}

func listWithdrawals(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Withdrawal{})
	if status := c.QueryParam("status"); status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query withdrawals", err.Error())
	}

	var rows []domain.Withdrawal
	if err := base.Order("created_at DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query withdrawals", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getWithdrawal(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid withdrawal ID", nil)
	}
	var w domain.Withdrawal
	if err := GetDB(c).Where("id = ?", id).First(&w).Error; err != nil {
		return fail(c, http.StatusNotFound, "WITHDRAWAL_NOT_FOUND", "Withdrawal not found", nil)
	}
	return ok(c, w)
}

type withdrawalPayload struct {
	OrderIds []int64 `json:"order_ids"`
	Remark   string  `json:"remark"`
}

// requestWithdrawal opens a payout request over delivered orders. The amount
// is computed by the ledger from the orders' profit snapshots.
func requestWithdrawal(c echo.Context) error {
	var payload withdrawalPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse withdrawal parameters", err.Error())
	}
	if len(payload.OrderIds) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "At least one order id is required", nil)
	}

	w, err := GetLedger(c).RequestWithdrawal(c.Request().Context(), currentOprID(c), payload.OrderIds, payload.Remark)
	if err != nil {
		return failLedger(c, err)
	}
	oplog(c, "request_withdrawal", fmt.Sprintf("withdrawal %d amount %d", w.ID, w.Amount))
	return ok(c, w)
}

// approveWithdrawal marks the referenced orders withdrawn and closes the
// request. Idempotent on an already approved request.
func approveWithdrawal(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid withdrawal ID", nil)
	}
	w, err := GetLedger(c).ApproveWithdrawal(c.Request().Context(), id)
	if err != nil {
		return failLedger(c, err)
	}
	oplog(c, "approve_withdrawal", fmt.Sprintf("withdrawal %d amount %d", w.ID, w.Amount))
	return ok(c, w)
}

type rejectPayload struct {
	Remark string `json:"remark" form:"remark"`
}

func rejectWithdrawal(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid withdrawal ID", nil)
	}
	var payload rejectPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse parameters", err.Error())
	}
	w, err := GetLedger(c).RejectWithdrawal(c.Request().Context(), id, payload.Remark)
	if err != nil {
		return failLedger(c, err)
	}
	oplog(c, "reject_withdrawal", fmt.Sprintf("withdrawal %d", w.ID))
	return ok(c, w)
}
