package domain

import "time"

const (
	ChatFromCustomer = "customer"
	ChatFromOperator = "operator"
)

// ChatMessage is one support-chat line between a customer and an operator.
type ChatMessage struct {
	ID         int64     `json:"id,string"`
	CustomerID int64     `gorm:"index" json:"customer_id,string" form:"customer_id"`
	Sender     string    `gorm:"size:16" json:"sender" form:"sender"`
	Body       string    `gorm:"size:2048" json:"body" form:"body"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName Specify table name
func (ChatMessage) TableName() string {
	return "chat_messages"
}
