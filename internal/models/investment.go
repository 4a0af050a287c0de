package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment is a client-created offer instance against a loot. Amount is
// always CustomerAmount + EarnAmount and never exceeds the loot's MaxAmount.
// The referral code is globally unique, enforced by the store index.
type Investment struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	LootID         uint            `gorm:"not null;index" json:"loot_id"`
	Loot           *Loot           `gorm:"foreignKey:LootID" json:"loot,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	CustomerAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"customer_amount"`
	EarnAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"earn_amount"`
	ReferralCode   string          `gorm:"uniqueIndex;size:64;not null" json:"referral_code"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (Investment) TableName() string {
	return "investments"
}
