package domain

import "time"

const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

// Withdrawal is an admin payout request over one or more delivered orders.
// Amount is the summed profit of the referenced orders at request time.
// Approving a withdrawal marks the orders withdrawn, which removes their
// profit from the available pool while keeping it in the lifetime aggregate.
type Withdrawal struct {
	ID         int64     `json:"id,string" form:"id"`
	OperatorID int64     `gorm:"index" json:"operator_id,string"`
	OrderIds   string    `gorm:"size:2048" json:"order_ids"` // comma separated order id list
	Amount     int64     `json:"amount"`
	Status     string    `gorm:"index;size:16" json:"status"`
	Remark     string    `json:"remark" form:"remark"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Withdrawal) TableName() string {
	return "withdrawals"
}
