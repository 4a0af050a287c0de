package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lootlink/internal/models"
)

// LedgerService owns the client_balances table. Every mutation is a single
// atomic UPDATE so concurrent settlements cannot lose increments; callers
// that need multi-row atomicity pass their transaction handle in.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Get returns the ledger row for a user.
func (s *LedgerService) Get(userID uint) (*models.ClientBalance, error) {
	var balance models.ClientBalance
	if err := s.db.Where("user_id = ?", userID).First(&balance).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("Balance not found")
		}
		return nil, err
	}
	return &balance, nil
}

// EnsureRow opens a zero ledger row for a user if none exists. Concurrent
// first submissions race to the insert; the conflict clause makes the loser a
// no-op instead of a unique-index failure.
func (s *LedgerService) EnsureRow(tx *gorm.DB, userID uint) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.ClientBalance{
		UserID:      userID,
		Balance:     decimal.Zero,
		TotalEarned: decimal.Zero,
	}).Error
}

// CreditEarnings atomically increments both balance and total_earned.
// Used only by the approval engine inside its transaction.
func (s *LedgerService) CreditEarnings(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	res := tx.Model(&models.ClientBalance{}).Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no ledger row for user %d", userID)
	}
	return nil
}

// Credit atomically increments balance only (manual admin credits).
// The row is created on first credit.
func (s *LedgerService) Credit(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	res := tx.Model(&models.ClientBalance{}).Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&models.ClientBalance{
			UserID:      userID,
			Balance:     amount,
			TotalEarned: decimal.Zero,
		}).Error
	}
	return nil
}

// Debit atomically decrements balance. Sufficiency is checked at request
// time, not here; see the withdrawal settlement notes.
func (s *LedgerService) Debit(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	res := tx.Model(&models.ClientBalance{}).Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no ledger row for user %d", userID)
	}
	return nil
}
