package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlatformStats is a daily snapshot of platform totals written by the stats job.
type PlatformStats struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Date               time.Time       `gorm:"uniqueIndex;not null" json:"date"`
	TotalClients       int64           `gorm:"default:0" json:"total_clients"`
	TotalLoots         int64           `gorm:"default:0" json:"total_loots"`
	TotalInvestments   int64           `gorm:"default:0" json:"total_investments"`
	CompletedReferrals int64           `gorm:"default:0" json:"completed_referrals"`
	TotalEarned        decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_earned"`
	PendingWithdrawals int64           `gorm:"default:0" json:"pending_withdrawals"`
	CreatedAt          time.Time       `json:"created_at"`
}

func (PlatformStats) TableName() string {
	return "platform_stats"
}
