package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal states
const (
	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalRejected = "rejected"
)

// Withdrawal is a client debit request. UPIID is copied from the profile at
// request time; ReferenceNumber is set (numeric only) when an admin approves.
type Withdrawal struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	User            *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	UPIID           string          `gorm:"column:upi_id;size:100;not null" json:"upi_id"`
	Status          string          `gorm:"size:20;not null;default:pending;index" json:"status"`
	Notes           *string         `gorm:"size:500" json:"notes,omitempty"`
	ReferenceNumber *string         `gorm:"size:50" json:"reference_number,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
