package services

import (
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"lootlink/internal/models"
	"lootlink/internal/notify"
)

// ApprovalService owns the referral state machine:
// pending -> completed | rejected, both terminal. Approval is the only path
// that credits a client's ledger, and the status flip, the client_customers
// mirror and the credit commit or roll back as one transaction.
type ApprovalService struct {
	db       *gorm.DB
	ledger   *LedgerService
	notifier notify.Notifier
}

func NewApprovalService(db *gorm.DB, ledger *LedgerService, notifier notify.Notifier) *ApprovalService {
	return &ApprovalService{db: db, ledger: ledger, notifier: notifier}
}

// PendingReferral is a pending referral joined with its investment, client
// and loot context for the admin review queue.
type PendingReferral struct {
	ID             uint            `json:"id"`
	InvestmentID   uint            `json:"investment_id"`
	CustomerUPI    string          `json:"customer_upi"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	ReferralCode   string          `json:"referral_code"`
	CustomerAmount decimal.Decimal `json:"customer_amount"`
	EarnAmount     decimal.Decimal `json:"earn_amount"`
	ClientName     string          `json:"client_name"`
	ClientEmail    string          `json:"client_email"`
	LootTitle      string          `json:"loot_title"`
	RedirectURL    string          `json:"redirect_url"`
}

// Pending returns the admin review queue, newest first.
func (s *ApprovalService) Pending() ([]PendingReferral, error) {
	var rows []PendingReferral
	err := s.db.Model(&models.Referral{}).
		Select(`referrals.id, referrals.investment_id, referrals.customer_upi, referrals.amount, referrals.status,
			investments.referral_code, investments.customer_amount, investments.earn_amount,
			users.username AS client_name, users.email AS client_email,
			loots.title AS loot_title, loots.redirect_url`).
		Joins("JOIN investments ON investments.id = referrals.investment_id").
		Joins("JOIN users ON users.id = investments.user_id").
		Joins("JOIN loots ON loots.id = investments.loot_id").
		Where("referrals.status = ?", models.ReferralPending).
		Order("referrals.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Approve completes a pending referral and credits the owning client with the
// investment's earn amount (the full amount for legacy rows without a split).
// Returns the loot redirect URL for callers resuming a customer flow.
func (s *ApprovalService) Approve(referralID uint) (string, error) {
	var referral models.Referral
	if err := s.db.First(&referral, referralID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", notFoundError("Referral not found")
		}
		return "", err
	}
	if referral.Status != models.ReferralPending {
		return "", invalidStateError("Referral is not pending")
	}

	var investment models.Investment
	if err := s.db.First(&investment, referral.InvestmentID).Error; err != nil {
		return "", err
	}
	var loot models.Loot
	if err := s.db.First(&loot, investment.LootID).Error; err != nil {
		return "", err
	}

	earn := investment.EarnAmount
	if earn.IsZero() {
		// Legacy investments carry no split, credit the full amount.
		earn = investment.Amount
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Conditional update doubles as the state guard under concurrency:
		// a second approve sees zero rows and fails inside the transaction.
		res := tx.Model(&models.Referral{}).
			Where("id = ? AND status = ?", referral.ID, models.ReferralPending).
			Update("status", models.ReferralCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidStateError("Referral is not pending")
		}

		if err := tx.Model(&models.ClientCustomer{}).
			Where("investment_id = ? AND customer_upi = ?", referral.InvestmentID, referral.CustomerUPI).
			Update("status", models.ReferralCompleted).Error; err != nil {
			return err
		}

		return s.ledger.CreditEarnings(tx, investment.UserID, earn)
	})
	if err != nil {
		return "", err
	}

	log.Printf("Referral %d approved, credited %s to user %d", referral.ID, earn, investment.UserID)
	go s.notifier.Notify(investment.UserID, "referral_approved",
		"A referral was approved and "+earn.String()+" was credited to your balance")

	return loot.RedirectURL, nil
}

// Reject marks a pending referral rejected with a reason. No ledger effect.
func (s *ApprovalService) Reject(referralID uint, reason string) error {
	var referral models.Referral
	if err := s.db.First(&referral, referralID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return notFoundError("Referral not found")
		}
		return err
	}
	if referral.Status != models.ReferralPending {
		return invalidStateError("Referral is not pending")
	}

	if reason == "" {
		reason = "No reason provided"
	}

	var investment models.Investment
	if err := s.db.First(&investment, referral.InvestmentID).Error; err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Referral{}).
			Where("id = ? AND status = ?", referral.ID, models.ReferralPending).
			Updates(map[string]interface{}{
				"status":           models.ReferralRejected,
				"rejection_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidStateError("Referral is not pending")
		}

		return tx.Model(&models.ClientCustomer{}).
			Where("investment_id = ? AND customer_upi = ?", referral.InvestmentID, referral.CustomerUPI).
			Update("status", models.ReferralRejected).Error
	})
	if err != nil {
		return err
	}

	log.Printf("Referral %d rejected: %s", referral.ID, reason)
	go s.notifier.Notify(investment.UserID, "referral_rejected", "A referral was rejected: "+reason)

	return nil
}
