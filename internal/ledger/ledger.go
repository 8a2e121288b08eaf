package ledger

import (
	"context"
	"strconv"
	"strings"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/pkg/common"
)

// Event topics published by the ledger. Subscribers receive the affected
// *domain.Order (or *domain.Withdrawal for payout events).
const (
	TopicOrderCreated       = "ledger:order:created"
	TopicOrderStatusChanged = "ledger:order:status"
	TopicOrderPaid          = "ledger:order:paid"
	TopicOrdersWithdrawn    = "ledger:orders:withdrawn"
)

// OrderLine is one requested purchase line at checkout.
type OrderLine struct {
	ProductID int64 `json:"product_id,string"`
	Quantity  int64 `json:"quantity"`
}

// Ledger is the single source of truth for order financials, the order
// status machine and withdrawal bookkeeping. All operations are synchronous
// and appear atomic to the caller: the stock reservation is delegated to the
// repository's conditional decrement, and any downstream write failure rolls
// the reservation back.
type Ledger struct {
	products    ProductRepository
	orders      OrderRepository
	withdrawals WithdrawalRepository

	// commissionRate is the platform commission in basis points of the
	// order total (100 = 1%). Zero by default.
	commissionRate int64
	bus            evbus.Bus
}

func New(products ProductRepository, orders OrderRepository, withdrawals WithdrawalRepository) *Ledger {
	return &Ledger{
		products:    products,
		orders:      orders,
		withdrawals: withdrawals,
	}
}

// SetCommissionRate sets the platform commission in basis points.
func (l *Ledger) SetCommissionRate(bp int64) *Ledger {
	l.commissionRate = bp
	return l
}

// SetEventBus attaches an event bus for order lifecycle notifications.
func (l *Ledger) SetEventBus(bus evbus.Bus) *Ledger {
	l.bus = bus
	return l
}

func (l *Ledger) publish(topic string, args ...interface{}) {
	if l.bus != nil {
		l.bus.Publish(topic, args...)
	}
}

// CreateOrder snapshots current product prices and costs into immutable order
// items, reserves stock line by line and persists the order in pending state.
// The entire order is rejected when any line cannot be satisfied; stock
// already reserved for earlier lines is returned.
func (l *Ledger) CreateOrder(ctx context.Context, customerID int64, lines []OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	now := time.Now()
	items := make([]domain.OrderItem, 0, len(lines))
	for _, ln := range lines {
		if ln.Quantity < 1 {
			return nil, errors.Wrapf(ErrEmptyOrder, "product %d: quantity %d", ln.ProductID, ln.Quantity)
		}
		p, err := l.products.GetByID(ctx, ln.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve product %d", ln.ProductID)
		}
		if p.Status == domain.ProductInactive {
			return nil, errors.Wrapf(ErrProductNotFound, "product %d is inactive", p.ID)
		}
		items = append(items, domain.OrderItem{
			ID:        common.UUIDint64(),
			ProductID: p.ID,
			Sku:       p.Sku,
			Name:      p.Name,
			Quantity:  ln.Quantity,
			Price:     p.Price,
			Cost:      p.Cost,
			CreatedAt: now,
		})
	}

	reserved := items[:0:0]
	release := func() {
		for _, it := range reserved {
			if err := l.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				zap.L().Error("failed to release reserved stock",
					zap.Int64("product_id", it.ProductID),
					zap.Int64("quantity", it.Quantity),
					zap.Error(err))
			}
		}
	}
	for _, it := range items {
		if err := l.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			release()
			return nil, errors.Wrapf(err, "reserve stock for product %d", it.ProductID)
		}
		reserved = append(reserved, it)
	}

	order := &domain.Order{
		ID:             common.UUIDint64(),
		CustomerID:     customerID,
		Items:          items,
		Status:         domain.OrderPending,
		DeliveryStatus: "pending",
		PaymentStatus:  domain.PaymentPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	order.Recompute()
	if l.commissionRate > 0 {
		order.Commission = order.Total * l.commissionRate / 10000
		order.Recompute()
	}

	if err := l.orders.Create(ctx, order); err != nil {
		release()
		return nil, err
	}

	zap.L().Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("customer_id", customerID),
		zap.Int("lines", len(items)),
		zap.Int64("total", order.Total),
		zap.Int64("profit", order.Profit))
	l.publish(TopicOrderCreated, order)
	return order, nil
}

// TransitionStatus moves an order along the allowed status edges. Moving to
// cancelled restocks every line; delivered stamps the delivery time. The
// withdrawn state is reserved for MarkWithdrawn and rejected here.
func (l *Ledger) TransitionStatus(ctx context.Context, orderID int64, next domain.OrderStatus) (*domain.Order, error) {
	if next == domain.OrderWithdrawn {
		return nil, errors.Wrap(ErrInvalidTransition, "withdrawn is set through withdrawal marking only")
	}
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, next) {
		return nil, errors.Wrapf(ErrInvalidTransition, "%s -> %s", order.Status, next)
	}

	var restocked []domain.OrderItem
	if next == domain.OrderCancelled {
		for _, it := range order.Items {
			if err := l.products.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				l.reserveBack(ctx, restocked)
				return nil, errors.Wrapf(err, "restock product %d", it.ProductID)
			}
			restocked = append(restocked, it)
		}
	}

	prev := order.Status
	now := time.Now()
	order.Status = next
	order.UpdatedAt = now
	switch next {
	case domain.OrderShipped:
		order.DeliveryStatus = "shipped"
	case domain.OrderDelivered:
		order.DeliveryStatus = "delivered"
		order.DeliveredAt = &now
	case domain.OrderCancelled:
		order.DeliveryStatus = "cancelled"
	}

	if err := l.orders.Save(ctx, order); err != nil {
		l.reserveBack(ctx, restocked)
		return nil, err
	}

	zap.L().Info("order status changed",
		zap.Int64("order_id", order.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)))
	l.publish(TopicOrderStatusChanged, order)
	return order, nil
}

// reserveBack re-applies stock decrements after a failed cancellation, so a
// half-cancelled order never leaks inventory.
func (l *Ledger) reserveBack(ctx context.Context, items []domain.OrderItem) {
	for _, it := range items {
		if err := l.products.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			zap.L().Error("failed to re-reserve stock after aborted cancellation",
				zap.Int64("product_id", it.ProductID),
				zap.Error(err))
		}
	}
}

// ConfirmPayment records the simulated payment result for an order. Paying
// an already paid order is a no-op.
func (l *Ledger) ConfirmPayment(ctx context.Context, orderID int64) (*domain.Order, error) {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return order, nil
	}
	if order.Status == domain.OrderCancelled {
		return nil, errors.Wrap(ErrInvalidTransition, "cannot pay a cancelled order")
	}
	order.PaymentStatus = domain.PaymentPaid
	order.UpdatedAt = time.Now()
	if err := l.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	l.publish(TopicOrderPaid, order)
	return order, nil
}

// MarkWithdrawn flags the orders' profit as paid out. Every referenced order
// must be delivered or already withdrawn; re-marking is a no-op so a double
// submission from the admin UI cannot fail. Validation runs over the whole
// batch before anything is written, but writes land per order: if a save
// fails mid-batch the earlier orders stay withdrawn, the returned amount
// covers only what was written, and retrying the same batch picks up the
// rest (the written orders are skipped as already withdrawn). Returns the
// newly withdrawn profit.
func (l *Ledger) MarkWithdrawn(ctx context.Context, orderIDs []int64) (int64, error) {
	pending := make([]*domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		order, err := l.orders.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		switch order.Status {
		case domain.OrderWithdrawn:
			// already withdrawn, skip
		case domain.OrderDelivered:
			pending = append(pending, order)
		default:
			return 0, errors.Wrapf(ErrInvalidWithdrawalState, "order %d is %s", id, order.Status)
		}
	}

	var amount int64
	now := time.Now()
	for _, order := range pending {
		order.Status = domain.OrderWithdrawn
		order.WithdrawnAt = &now
		order.UpdatedAt = now
		if err := l.orders.Save(ctx, order); err != nil {
			return amount, err
		}
		amount += order.Profit
	}

	if len(pending) > 0 {
		zap.L().Info("orders marked withdrawn",
			zap.Int("count", len(pending)),
			zap.Int64("amount", amount))
		l.publish(TopicOrdersWithdrawn, pending, amount)
	}
	return amount, nil
}

// RequestWithdrawal opens a pending payout request over delivered orders.
// The amount is the summed profit at request time.
func (l *Ledger) RequestWithdrawal(ctx context.Context, operatorID int64, orderIDs []int64, remark string) (*domain.Withdrawal, error) {
	if len(orderIDs) == 0 {
		return nil, errors.Wrap(ErrInvalidWithdrawalState, "no orders referenced")
	}
	var amount int64
	for _, id := range orderIDs {
		order, err := l.orders.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order.Status != domain.OrderDelivered {
			return nil, errors.Wrapf(ErrInvalidWithdrawalState, "order %d is %s", id, order.Status)
		}
		amount += order.Profit
	}

	now := time.Now()
	w := &domain.Withdrawal{
		ID:         common.UUIDint64(),
		OperatorID: operatorID,
		OrderIds:   joinOrderIDs(orderIDs),
		Amount:     amount,
		Status:     domain.WithdrawalPending,
		Remark:     remark,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := l.withdrawals.Create(ctx, w); err != nil {
		return nil, err
	}
	zap.L().Info("withdrawal requested",
		zap.Int64("withdrawal_id", w.ID),
		zap.Int64("amount", amount),
		zap.Int("orders", len(orderIDs)))
	return w, nil
}

// ApproveWithdrawal marks the referenced orders withdrawn and closes the
// request. Approving an already approved request is a no-op.
func (l *Ledger) ApproveWithdrawal(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	w, err := l.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch w.Status {
	case domain.WithdrawalApproved:
		return w, nil
	case domain.WithdrawalRejected:
		return nil, errors.Wrapf(ErrInvalidWithdrawalState, "withdrawal %d already rejected", id)
	}

	ids, err := SplitOrderIDs(w.OrderIds)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidWithdrawalState, "withdrawal %d: %v", id, err)
	}
	if _, err := l.MarkWithdrawn(ctx, ids); err != nil {
		return nil, err
	}

	now := time.Now()
	w.Status = domain.WithdrawalApproved
	w.DecidedAt = &now
	w.UpdatedAt = now
	if err := l.withdrawals.Save(ctx, w); err != nil {
		return nil, err
	}
	l.publish(TopicOrdersWithdrawn, w)
	return w, nil
}

// RejectWithdrawal closes a pending request without touching the orders.
func (l *Ledger) RejectWithdrawal(ctx context.Context, id int64, remark string) (*domain.Withdrawal, error) {
	w, err := l.withdrawals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch w.Status {
	case domain.WithdrawalRejected:
		return w, nil
	case domain.WithdrawalApproved:
		return nil, errors.Wrapf(ErrInvalidWithdrawalState, "withdrawal %d already approved", id)
	}
	now := time.Now()
	w.Status = domain.WithdrawalRejected
	if remark != "" {
		w.Remark = remark
	}
	w.DecidedAt = &now
	w.UpdatedAt = now
	if err := l.withdrawals.Save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func joinOrderIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

// SplitOrderIDs parses the comma separated order id list stored on a
// withdrawal record.
func SplitOrderIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := cast.ToInt64E(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
