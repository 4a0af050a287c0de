package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Loot is an admin-managed promotional campaign. MaxAmount caps the sum of
// customer and earn amounts of every investment created against it.
type Loot struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	MaxAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"max_amount"`
	RedirectURL string          `gorm:"size:500;not null" json:"redirect_url"`
	IsActive    bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Loot) TableName() string {
	return "loots"
}
