package domain

import "time"

// Banner is a storefront carousel entry managed from the admin panel.
type Banner struct {
	ID        int64     `json:"id,string" form:"id"`
	Title     string    `json:"title" form:"title"`
	Image     string    `gorm:"size:1024" json:"image" form:"image"`
	Link      string    `gorm:"size:1024" json:"link" form:"link"`
	Sort      int       `json:"sort" form:"sort"`
	Status    string    `gorm:"index;size:16" json:"status" form:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Banner) TableName() string {
	return "banners"
}
