package domain

import "time"

const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

// Product is a catalog item. Price and Cost are stored in minor currency
// units (cents). Stock must never go negative; decrements happen through the
// ledger repository's conditional update only.
type Product struct {
	ID          int64     `json:"id,string" form:"id"`
	Sku         string    `gorm:"uniqueIndex;size:64" json:"sku" form:"sku"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	Description string    `gorm:"size:1024" json:"description" form:"description"`
	Price       int64     `json:"price" form:"price"`
	MinPrice    int64     `json:"min_price" form:"min_price"`
	MaxPrice    int64     `json:"max_price" form:"max_price"`
	Cost        int64     `json:"cost" form:"cost"`
	Stock       int64     `json:"stock" form:"stock"`
	Image       string    `gorm:"size:1024" json:"image" form:"image"`
	CategoryID  int64     `gorm:"index" json:"category_id,string" form:"category_id"`
	Status      string    `gorm:"index;size:16" json:"status" form:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

type Category struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `gorm:"uniqueIndex;size:64" json:"name" form:"name"`
	Sort      int       `json:"sort" form:"sort"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "categories"
}
