package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vendora/vendora/internal/domain"
)

// ProductRepository is the ledger's view of catalog persistence.
type ProductRepository interface {
	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// DecrementStock atomically subtracts qty from the product's stock and
	// fails with ErrOutOfStock when the remaining stock is insufficient.
	// Implementations must guarantee that two concurrent calls cannot both
	// succeed against combined-insufficient stock.
	DecrementStock(ctx context.Context, productID, qty int64) error

	// IncrementStock returns qty units to the product's stock (restock on
	// cancellation or rollback).
	IncrementStock(ctx context.Context, productID, qty int64) error
}

// OrderRepository handles order persistence. Writes are durable before the
// call returns.
type OrderRepository interface {
	// Create inserts a new order with its items
	Create(ctx context.Context, o *domain.Order) error

	// Save persists changes to an existing order
	Save(ctx context.Context, o *domain.Order) error

	// GetByID retrieves an order with its items
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// ListByStatus retrieves orders in any of the given statuses
	ListByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]*domain.Order, error)

	// ListByCustomer retrieves a customer's orders, newest first
	ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error)

	// ListAll retrieves every order
	ListAll(ctx context.Context) ([]*domain.Order, error)
}

// WithdrawalRepository handles payout request persistence.
type WithdrawalRepository interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	Save(ctx context.Context, w *domain.Withdrawal) error
	GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error)
	List(ctx context.Context) ([]*domain.Withdrawal, error)
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, persistence("get product", err)
	}
	return &p, nil
}

// DecrementStock relies on a conditional UPDATE so the stock check and the
// subtraction happen in one statement. RowsAffected == 0 means either the
// product vanished or the guard failed.
func (r *GormProductRepository) DecrementStock(ctx context.Context, productID, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return persistence("decrement stock", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Product{}).
			Where("id = ?", productID).Count(&count).Error; err != nil {
			return persistence("decrement stock", err)
		}
		if count == 0 {
			return ErrProductNotFound
		}
		return ErrOutOfStock
	}
	return nil
}

func (r *GormProductRepository) IncrementStock(ctx context.Context, productID, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return persistence("increment stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return persistence("create order", err)
	}
	return nil
}

func (r *GormOrderRepository) Save(ctx context.Context, o *domain.Order) error {
	if err := r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: false}).Save(o).Error; err != nil {
		return persistence("save order", err)
	}
	return nil
}

func (r *GormOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, persistence("get order", err)
	}
	return &o, nil
}

func (r *GormOrderRepository) ListByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, persistence("list orders by status", err)
	}
	return orders, nil
}

func (r *GormOrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, persistence("list customer orders", err)
	}
	return orders, nil
}

func (r *GormOrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := r.db.WithContext(ctx).Preload("Items").Order("id DESC").Find(&orders).Error
	if err != nil {
		return nil, persistence("list orders", err)
	}
	return orders, nil
}

// GormWithdrawalRepository is the GORM implementation of WithdrawalRepository
type GormWithdrawalRepository struct {
	db *gorm.DB
}

func NewGormWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

func (r *GormWithdrawalRepository) Create(ctx context.Context, w *domain.Withdrawal) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return persistence("create withdrawal", err)
	}
	return nil
}

func (r *GormWithdrawalRepository) Save(ctx context.Context, w *domain.Withdrawal) error {
	if err := r.db.WithContext(ctx).Save(w).Error; err != nil {
		return persistence("save withdrawal", err)
	}
	return nil
}

func (r *GormWithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := r.db.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWithdrawalNotFound
	}
	if err != nil {
		return nil, persistence("get withdrawal", err)
	}
	return &w, nil
}

func (r *GormWithdrawalRepository) List(ctx context.Context) ([]*domain.Withdrawal, error) {
	var ws []*domain.Withdrawal
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&ws).Error; err != nil {
		return nil, persistence("list withdrawals", err)
	}
	return ws, nil
}
