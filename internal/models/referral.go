package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Referral states. A referral is created pending and transitions exactly once.
const (
	ReferralPending   = "pending"
	ReferralCompleted = "completed"
	ReferralRejected  = "rejected"
)

// Referral is one customer submission against an investment.
type Referral struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	InvestmentID    uint            `gorm:"not null;index" json:"investment_id"`
	Investment      *Investment     `gorm:"foreignKey:InvestmentID" json:"investment,omitempty"`
	CustomerUPI     string          `gorm:"size:100;not null" json:"customer_upi"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status          string          `gorm:"size:20;not null;default:pending;index" json:"status"`
	RejectionReason *string         `gorm:"size:500" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Referral) TableName() string {
	return "referrals"
}

// ClientCustomer is the denormalized reporting shadow of a referral, keyed by
// (investment_id, customer_upi). Its status mirrors the parent referral.
type ClientCustomer struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ClientID       uint            `gorm:"not null;index" json:"client_id"`
	Client         *User           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	LootID         uint            `gorm:"not null;index" json:"loot_id"`
	Loot           *Loot           `gorm:"foreignKey:LootID" json:"loot,omitempty"`
	InvestmentID   uint            `gorm:"not null;index" json:"investment_id"`
	CustomerUPI    string          `gorm:"size:100;not null;index" json:"customer_upi"`
	CustomerName   string          `gorm:"size:100;not null" json:"customer_name"`
	CustomerMobile string          `gorm:"size:20;not null" json:"customer_mobile"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status         string          `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (ClientCustomer) TableName() string {
	return "client_customers"
}
