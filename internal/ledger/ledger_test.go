package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/vendora/internal/domain"
)

func newTestLedger(t *testing.T) (*Ledger, *MemStore) {
	t.Helper()
	store := NewMemStore()
	l := New(store.Products(), store.Orders(), store.Withdrawals())
	return l, store
}

func seedProduct(store *MemStore, id, price, cost, stock int64) {
	store.PutProduct(&domain.Product{
		ID:     id,
		Sku:    "SKU-1",
		Name:   "widget",
		Price:  price,
		Cost:   cost,
		Stock:  stock,
		Status: domain.ProductActive,
	})
}

func TestCreateOrderFinancials(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)

	order, err := l.CreateOrder(context.Background(), 100, []OrderLine{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)

	assert.Equal(t, int64(60), order.Total)
	assert.Equal(t, int64(30), order.Cost)
	assert.Equal(t, int64(30), order.Profit)
	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, order.Total-order.Cost-order.Commission, order.Profit)

	var itemTotal int64
	for _, it := range order.Items {
		itemTotal += it.Subtotal()
	}
	assert.Equal(t, order.Total, itemTotal)

	p, err := store.Products().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.Stock)
}

func TestCreateOrderCommission(t *testing.T) {
	l, store := newTestLedger(t)
	l.SetCommissionRate(1000) // 10%
	seedProduct(store, 1, 20, 10, 5)

	order, err := l.CreateOrder(context.Background(), 100, []OrderLine{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)

	assert.Equal(t, int64(6), order.Commission)
	assert.Equal(t, int64(24), order.Profit)
	assert.Equal(t, order.Total-order.Cost-order.Commission, order.Profit)
}

func TestCreateOrderSnapshotImmutable(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)

	order, err := l.CreateOrder(context.Background(), 100, []OrderLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	// Raising the catalog price must not touch the historical snapshot.
	store.PutProduct(&domain.Product{ID: 1, Price: 99, Cost: 50, Stock: 4, Status: domain.ProductActive})

	got, err := store.Orders().GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Items[0].Price)
	assert.Equal(t, int64(10), got.Items[0].Cost)
}

func TestCreateOrderValidation(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)
	ctx := context.Background()

	_, err := l.CreateOrder(ctx, 100, nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 0}})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 404, Quantity: 1}})
	assert.ErrorIs(t, err, ErrProductNotFound)

	store.PutProduct(&domain.Product{ID: 2, Price: 5, Cost: 2, Stock: 10, Status: domain.ProductInactive})
	_, err = l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 2, Quantity: 1}})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateOrderOutOfStock(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)

	_, err := l.CreateOrder(context.Background(), 100, []OrderLine{{ProductID: 1, Quantity: 6}})
	assert.ErrorIs(t, err, ErrOutOfStock)

	p, err := store.Products().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.Stock, "rejected order must not decrement stock")
}

func TestCreateOrderNoPartialFulfillment(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)
	store.PutProduct(&domain.Product{ID: 2, Sku: "SKU-2", Name: "gadget", Price: 50, Cost: 30, Stock: 1, Status: domain.ProductActive})

	_, err := l.CreateOrder(context.Background(), 100, []OrderLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	})
	assert.ErrorIs(t, err, ErrOutOfStock)

	// the first line's reservation is released
	p1, _ := store.Products().GetByID(context.Background(), 1)
	p2, _ := store.Products().GetByID(context.Background(), 2)
	assert.Equal(t, int64(5), p1.Stock)
	assert.Equal(t, int64(1), p2.Stock)
}

type failingOrderRepo struct {
	OrderRepository
	err error
}

func (f *failingOrderRepo) Create(ctx context.Context, o *domain.Order) error { return f.err }

func TestCreateOrderRollsBackStockOnSaveFailure(t *testing.T) {
	store := NewMemStore()
	seedProduct(store, 1, 20, 10, 5)
	boom := persistence("create order", assert.AnError)
	l := New(store.Products(), &failingOrderRepo{store.Orders(), boom}, store.Withdrawals())

	_, err := l.CreateOrder(context.Background(), 100, []OrderLine{{ProductID: 1, Quantity: 3}})
	assert.ErrorIs(t, err, ErrPersistence)

	p, _ := store.Products().GetByID(context.Background(), 1)
	assert.Equal(t, int64(5), p.Stock, "stock decrement must be rolled back")
}

func TestConcurrentCheckoutNoOverselling(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.CreateOrder(context.Background(), 100, []OrderLine{{ProductID: 1, Quantity: 3}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, stockCount int
	for err := range errs {
		if err == nil {
			okCount++
		} else if assert.ErrorIs(t, err, ErrOutOfStock) {
			stockCount++
		}
	}
	assert.Equal(t, 1, okCount, "exactly one concurrent order may succeed")
	assert.Equal(t, 1, stockCount)

	p, _ := store.Products().GetByID(context.Background(), 1)
	assert.Equal(t, int64(2), p.Stock)
}

func TestCancelRestoresStock(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)
	ctx := context.Background()

	order, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)

	_, err = l.TransitionStatus(ctx, order.ID, domain.OrderCancelled)
	require.NoError(t, err)

	p, _ := store.Products().GetByID(ctx, 1)
	assert.Equal(t, int64(5), p.Stock, "cancellation restores the pre-order stock")
}

func TestTransitionChain(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)
	ctx := context.Background()

	order, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	for _, next := range []domain.OrderStatus{domain.OrderProcessing, domain.OrderShipped, domain.OrderDelivered} {
		order, err = l.TransitionStatus(ctx, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, order.Status)
	}
	assert.NotNil(t, order.DeliveredAt)

	// delivered is terminal for plain transitions
	_, err = l.TransitionStatus(ctx, order.ID, domain.OrderProcessing)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = l.TransitionStatus(ctx, order.ID, domain.OrderCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = l.TransitionStatus(ctx, order.ID, domain.OrderWithdrawn)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionRejectsUnknownOrder(t *testing.T) {
	l, _ := newTestLedger(t)
	_, err := l.TransitionStatus(context.Background(), 404, domain.OrderProcessing)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func deliverOrder(t *testing.T, l *Ledger, orderID int64) {
	t.Helper()
	ctx := context.Background()
	for _, next := range []domain.OrderStatus{domain.OrderProcessing, domain.OrderShipped, domain.OrderDelivered} {
		_, err := l.TransitionStatus(ctx, orderID, next)
		require.NoError(t, err)
	}
}

func TestMarkWithdrawnBookkeeping(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)
	ctx := context.Background()

	order, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)
	deliverOrder(t, l, order.ID)

	stats, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(30), stats.AvailableProfit)
	assert.Equal(t, int64(30), stats.LifetimeProfit)

	amount, err := l.MarkWithdrawn(ctx, []int64{order.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(30), amount)

	stats, err = l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.AvailableProfit, "withdrawn profit leaves the available pool")
	assert.Equal(t, int64(30), stats.LifetimeProfit, "withdrawn profit stays in the lifetime aggregate")

	// re-marking is a no-op, not an error, and does not double count
	amount, err = l.MarkWithdrawn(ctx, []int64{order.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), amount)

	stats, err = l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.AvailableProfit)
	assert.Equal(t, int64(30), stats.LifetimeProfit)
}

func TestMarkWithdrawnRejectsUndelivered(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 10)
	ctx := context.Background()

	pendingOrder, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)

	deliveredOrder, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	deliverOrder(t, l, deliveredOrder.ID)

	_, err = l.MarkWithdrawn(ctx, []int64{deliveredOrder.ID, pendingOrder.ID})
	assert.ErrorIs(t, err, ErrInvalidWithdrawalState)

	// the batch is validated up front: the delivered order stays delivered
	got, err := store.Orders().GetByID(ctx, deliveredOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, got.Status)
}

type flakySaveRepo struct {
	OrderRepository
	saves     int
	failAfter int
	err       error
}

func (f *flakySaveRepo) Save(ctx context.Context, o *domain.Order) error {
	f.saves++
	if f.saves > f.failAfter {
		return f.err
	}
	return f.OrderRepository.Save(ctx, o)
}

func TestMarkWithdrawnMidBatchSaveFailure(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 10)
	ctx := context.Background()

	first, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)
	deliverOrder(t, l, first.ID)
	second, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)
	deliverOrder(t, l, second.ID)

	flaky := &flakySaveRepo{
		OrderRepository: store.Orders(),
		failAfter:       1,
		err:             persistence("save order", assert.AnError),
	}
	broken := New(store.Products(), flaky, store.Withdrawals())

	// the first save lands, the second fails: the returned amount covers only
	// the written order and the rest of the batch is untouched
	amount, err := broken.MarkWithdrawn(ctx, []int64{first.ID, second.ID})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, int64(30), amount)

	gotFirst, err := store.Orders().GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderWithdrawn, gotFirst.Status)
	gotSecond, err := store.Orders().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, gotSecond.Status)

	// retrying the same batch skips the written order and finishes the rest
	amount, err = l.MarkWithdrawn(ctx, []int64{first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(20), amount)

	stats, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.AvailableProfit)
	assert.Equal(t, int64(50), stats.LifetimeProfit)
}

func TestWithdrawalRequestFlow(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 10)
	ctx := context.Background()

	order, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 3}})
	require.NoError(t, err)
	deliverOrder(t, l, order.ID)

	w, err := l.RequestWithdrawal(ctx, 7, []int64{order.ID}, "monthly payout")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalPending, w.Status)
	assert.Equal(t, int64(30), w.Amount)

	w, err = l.ApproveWithdrawal(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalApproved, w.Status)
	require.NotNil(t, w.DecidedAt)

	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderWithdrawn, got.Status)

	// approving twice is a no-op
	again, err := l.ApproveWithdrawal(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalApproved, again.Status)

	// a decided request cannot flip to rejected
	_, err = l.RejectWithdrawal(ctx, w.ID, "")
	assert.ErrorIs(t, err, ErrInvalidWithdrawalState)
}

func TestRejectWithdrawalLeavesOrdersAlone(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 10)
	ctx := context.Background()

	order, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 2}})
	require.NoError(t, err)
	deliverOrder(t, l, order.ID)

	w, err := l.RequestWithdrawal(ctx, 7, []int64{order.ID}, "")
	require.NoError(t, err)

	w, err = l.RejectWithdrawal(ctx, w.ID, "insufficient balance")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalRejected, w.Status)

	got, err := store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, got.Status)

	stats, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats.AvailableProfit)
}

func TestConfirmPayment(t *testing.T) {
	l, store := newTestLedger(t)
	seedProduct(store, 1, 20, 10, 5)
	ctx := context.Background()

	order, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)

	order, err = l.ConfirmPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)

	// paying again is a no-op
	order, err = l.ConfirmPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)

	cancelled, err := l.CreateOrder(ctx, 100, []OrderLine{{ProductID: 1, Quantity: 1}})
	require.NoError(t, err)
	_, err = l.TransitionStatus(ctx, cancelled.ID, domain.OrderCancelled)
	require.NoError(t, err)
	_, err = l.ConfirmPayment(ctx, cancelled.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSplitOrderIDs(t *testing.T) {
	ids, err := SplitOrderIDs("1,2, 3")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	ids, err = SplitOrderIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = SplitOrderIDs("1,x")
	assert.Error(t, err)
}
