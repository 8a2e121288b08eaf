package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

// Deterministic validation failures. None of these should be retried; the
// caller must correct the request and resubmit. Check with errors.Is.
var (
	ErrProductNotFound        = errors.New("product not found")
	ErrOutOfStock             = errors.New("insufficient stock")
	ErrEmptyOrder             = errors.New("order has no valid items")
	ErrInvalidTransition      = errors.New("invalid order status transition")
	ErrInvalidWithdrawalState = errors.New("order is not withdrawable")
	ErrOrderNotFound          = errors.New("order not found")
	ErrWithdrawalNotFound     = errors.New("withdrawal not found")
)

// ErrPersistence marks storage-layer faults passed through unchanged. The
// ledger never interprets or retries them.
var ErrPersistence = errors.New("persistence failure")

type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string {
	return fmt.Sprintf("%s: persistence failure: %v", e.op, e.err)
}

func (e *persistenceError) Unwrap() error { return e.err }

// Is lets errors.Is(err, ErrPersistence) match while the original storage
// error stays reachable through Unwrap.
func (e *persistenceError) Is(target error) bool { return target == ErrPersistence }

func persistence(op string, err error) error {
	return &persistenceError{op: op, err: err}
}
