package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/vendora/vendora/internal/ledger"
)

func newTestContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestFailLedgerStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ledger.ErrEmptyOrder, http.StatusBadRequest, "EMPTY_ORDER"},
		{ledger.ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
		{ledger.ErrOutOfStock, http.StatusConflict, "OUT_OF_STOCK"},
		{ledger.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{ledger.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{ledger.ErrInvalidWithdrawalState, http.StatusConflict, "INVALID_WITHDRAWAL_STATE"},
		{ledger.ErrWithdrawalNotFound, http.StatusNotFound, "WITHDRAWAL_NOT_FOUND"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		c, rec := newTestContext(t, "/")
		err := failLedger(c, tc.err)
		assert.NoError(t, err)
		assert.Equal(t, tc.status, rec.Code, tc.code)
		assert.Contains(t, rec.Body.String(), tc.code)
	}
}

func TestFailLedgerWrappedErrors(t *testing.T) {
	// Wrapped ledger errors must still map to their specific code.
	c, rec := newTestContext(t, "/")
	wrapped := errors.Wrap(ledger.ErrOutOfStock, "reserve stock for product 42")
	assert.NoError(t, failLedger(c, wrapped))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "OUT_OF_STOCK")
}

func TestParsePagination(t *testing.T) {
	c, _ := newTestContext(t, "/?page=3&pageSize=50")
	page, pageSize := parsePagination(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, pageSize)

	c, _ = newTestContext(t, "/")
	page, pageSize = parsePagination(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)

	c, _ = newTestContext(t, "/?page=-1&pageSize=9999")
	page, pageSize = parsePagination(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)
}
