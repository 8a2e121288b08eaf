package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/vendora/vendora/internal/domain"
)

// MemStore is the in-memory persistence backend. All three ledger
// repositories are facets over one mutex, so every operation (in particular
// the stock check-and-decrement) is atomic with respect to concurrent
// callers. Used by tests and the demo mode.
type MemStore struct {
	mu          sync.Mutex
	products    map[int64]*domain.Product
	orders      map[int64]*domain.Order
	withdrawals map[int64]*domain.Withdrawal
}

func NewMemStore() *MemStore {
	return &MemStore{
		products:    make(map[int64]*domain.Product),
		orders:      make(map[int64]*domain.Order),
		withdrawals: make(map[int64]*domain.Withdrawal),
	}
}

// Products returns the ProductRepository facet.
func (s *MemStore) Products() ProductRepository { return &memProducts{s} }

// Orders returns the OrderRepository facet.
func (s *MemStore) Orders() OrderRepository { return &memOrders{s} }

// Withdrawals returns the WithdrawalRepository facet.
func (s *MemStore) Withdrawals() WithdrawalRepository { return &memWithdrawals{s} }

// PutProduct inserts or replaces a product record.
func (s *MemStore) PutProduct(p *domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

type memProducts struct{ s *MemStore }

var _ ProductRepository = (*memProducts)(nil)

func (m *memProducts) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) DecrementStock(ctx context.Context, productID, qty int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	if p.Stock < qty {
		return ErrOutOfStock
	}
	p.Stock -= qty
	return nil
}

func (m *memProducts) IncrementStock(ctx context.Context, productID, qty int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.products[productID]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock += qty
	return nil
}

func copyOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = make([]domain.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

type memOrders struct{ s *MemStore }

var _ OrderRepository = (*memOrders)(nil)

func (m *memOrders) Create(ctx context.Context, o *domain.Order) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.orders[o.ID] = copyOrder(o)
	return nil
}

func (m *memOrders) Save(ctx context.Context, o *domain.Order) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.orders[o.ID]; !ok {
		return ErrOrderNotFound
	}
	m.s.orders[o.ID] = copyOrder(o)
	return nil
}

func (m *memOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (m *memOrders) ListByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]*domain.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.s.orders {
		for _, st := range statuses {
			if o.Status == st {
				out = append(out, copyOrder(o))
				break
			}
		}
	}
	sortOrders(out)
	return out, nil
}

func (m *memOrders) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.s.orders {
		if o.CustomerID == customerID {
			out = append(out, copyOrder(o))
		}
	}
	sortOrders(out)
	return out, nil
}

func (m *memOrders) ListAll(ctx context.Context) ([]*domain.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*domain.Order, 0, len(m.s.orders))
	for _, o := range m.s.orders {
		out = append(out, copyOrder(o))
	}
	sortOrders(out)
	return out, nil
}

func sortOrders(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
}

type memWithdrawals struct{ s *MemStore }

var _ WithdrawalRepository = (*memWithdrawals)(nil)

func (m *memWithdrawals) Create(ctx context.Context, w *domain.Withdrawal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *w
	m.s.withdrawals[w.ID] = &cp
	return nil
}

func (m *memWithdrawals) Save(ctx context.Context, w *domain.Withdrawal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.withdrawals[w.ID]; !ok {
		return ErrWithdrawalNotFound
	}
	cp := *w
	m.s.withdrawals[w.ID] = &cp
	return nil
}

func (m *memWithdrawals) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	w, ok := m.s.withdrawals[id]
	if !ok {
		return nil, ErrWithdrawalNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memWithdrawals) List(ctx context.Context) ([]*domain.Withdrawal, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]*domain.Withdrawal, 0, len(m.s.withdrawals))
	for _, w := range m.s.withdrawals {
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
