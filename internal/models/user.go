package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User roles
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User represents a platform account. Credentials are issued by the external
// identity service; this service only reads the role and the withdrawal settings.
type User struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Username           string          `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email              string          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Mobile             string          `gorm:"size:20" json:"mobile"`
	Role               string          `gorm:"size:10;not null;default:client;index" json:"role"`
	UPIID              *string         `gorm:"column:upi_id;size:100" json:"upi_id,omitempty"`
	WithdrawalPassword *string         `gorm:"size:255" json:"-"`
	HasSetupWithdrawal bool            `gorm:"default:false" json:"has_setup_withdrawal"`
	IsBlocked          bool            `gorm:"default:false" json:"is_blocked"`
	DeletedAt          *time.Time      `gorm:"index" json:"deleted_at,omitempty"`
	DeletedBalance     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"deleted_balance"`
	DeletedTotalEarned decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"deleted_total_earned"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsDeleted reports whether the account was soft deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// ClientBalance is the ledger row for a client, one per user.
// Balance and TotalEarned are mutated only through atomic increments.
type ClientBalance struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Balance     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	TotalEarned decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"total_earned"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (ClientBalance) TableName() string {
	return "client_balances"
}
