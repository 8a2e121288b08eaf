package domain

import "time"

// OrderStatus is the canonical order state vocabulary. The storefront and the
// admin panel historically mixed synonyms (confirmed/shipped,
// completed/delivered); those are accepted as input aliases by ParseOrderStatus
// and never stored.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	// OrderWithdrawn is delivered profit that has been paid out. It is only
	// reachable through the ledger's withdrawal marking, never through a
	// plain status transition.
	OrderWithdrawn OrderStatus = "withdrawn"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

// orderTransitions is the full set of allowed forward edges. delivered,
// cancelled and withdrawn are terminal here.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
}

// CanTransition reports whether from -> to is an allowed order status edge.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

var orderStatusAliases = map[string]OrderStatus{
	"pending":    OrderPending,
	"processing": OrderProcessing,
	"shipped":    OrderShipped,
	"confirmed":  OrderShipped,
	"delivered":  OrderDelivered,
	"completed":  OrderDelivered,
	"cancelled":  OrderCancelled,
	"rejected":   OrderCancelled,
	"withdrawn":  OrderWithdrawn,
}

// ParseOrderStatus maps a user supplied status string, including legacy
// display aliases, onto the canonical vocabulary.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st, ok := orderStatusAliases[s]
	return st, ok
}

// Order carries the financial snapshot of a purchase. Total, Cost and Profit
// are derived exclusively from the item snapshots; Profit = Total - Cost -
// Commission holds after every recompute.
type Order struct {
	ID             int64       `json:"id,string" form:"id"`
	CustomerID     int64       `gorm:"index" json:"customer_id,string" form:"customer_id"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total          int64       `json:"total"`
	Cost           int64       `json:"cost"`
	Commission     int64       `json:"commission"`
	Profit         int64       `json:"profit"`
	Status         OrderStatus `gorm:"index;size:16" json:"status"`
	DeliveryStatus string      `gorm:"size:16" json:"delivery_status"`
	PaymentStatus  string      `gorm:"size:16" json:"payment_status"`
	Remark         string      `json:"remark" form:"remark"`
	DeliveredAt    *time.Time  `json:"delivered_at,omitempty"`
	WithdrawnAt    *time.Time  `json:"withdrawn_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// Recompute rebuilds the derived money fields from the item snapshots.
func (o *Order) Recompute() {
	o.Total = 0
	o.Cost = 0
	for _, it := range o.Items {
		o.Total += it.Price * it.Quantity
		o.Cost += it.Cost * it.Quantity
	}
	o.Profit = o.Total - o.Cost - o.Commission
}

// OrderItem is owned by exactly one order. Price and Cost are unit amounts
// captured at order creation time and stay immutable even when the product's
// current price changes later.
type OrderItem struct {
	ID        int64     `json:"id,string"`
	OrderID   int64     `gorm:"index" json:"order_id,string"`
	ProductID int64     `gorm:"index" json:"product_id,string"`
	Sku       string    `gorm:"size:64" json:"sku"`
	Name      string    `json:"name"`
	Quantity  int64     `json:"quantity"`
	Price     int64     `json:"price"`
	Cost      int64     `json:"cost"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal is the line amount in minor units.
func (i OrderItem) Subtotal() int64 {
	return i.Price * i.Quantity
}
