package services

import (
	"regexp"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lootlink/internal/models"
	"lootlink/internal/notify"
)

var referenceNumberPattern = regexp.MustCompile(`^\d+$`)

// WithdrawalService handles client debit requests and their admin settlement.
// pending -> approved | rejected, both terminal; only approval debits the ledger.
type WithdrawalService struct {
	db       *gorm.DB
	ledger   *LedgerService
	notifier notify.Notifier
}

func NewWithdrawalService(db *gorm.DB, ledger *LedgerService, notifier notify.Notifier) *WithdrawalService {
	return &WithdrawalService{db: db, ledger: ledger, notifier: notifier}
}

// Request creates a pending withdrawal after checking funds, the withdrawal
// password and the profile UPI id. The payout address is always the stored
// profile UPI, never caller input.
func (s *WithdrawalService) Request(userID uint, amount decimal.Decimal, withdrawalPassword string) (*models.Withdrawal, error) {
	if !amount.IsPositive() {
		return nil, validationError("Valid amount is required")
	}
	if withdrawalPassword == "" {
		return nil, validationError("Withdrawal password is required")
	}

	balance, err := s.ledger.Get(userID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(balance.Balance) {
		return nil, validationError("Insufficient balance")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}

	if user.WithdrawalPassword == nil {
		return nil, preconditionError("Withdrawal password not set. Please complete withdrawal setup first.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.WithdrawalPassword), []byte(withdrawalPassword)); err != nil {
		return nil, authError("Incorrect withdrawal password")
	}

	if user.UPIID == nil || *user.UPIID == "" {
		return nil, preconditionError("UPI ID not set. Please set your UPI ID in profile first.")
	}

	withdrawal := models.Withdrawal{
		UserID: userID,
		Amount: amount,
		UPIID:  *user.UPIID,
		Status: models.WithdrawalPending,
	}
	if err := s.db.Create(&withdrawal).Error; err != nil {
		return nil, err
	}

	log.Printf("Withdrawal %d requested by user %d for %s", withdrawal.ID, userID, amount)
	return &withdrawal, nil
}

// ListByUser returns a client's withdrawal history, newest first.
func (s *WithdrawalService) ListByUser(userID uint) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&withdrawals).Error; err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// AdminWithdrawal is a withdrawal joined with the requesting client.
type AdminWithdrawal struct {
	models.Withdrawal
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ListAll returns every withdrawal with client context for the admin queue.
func (s *WithdrawalService) ListAll() ([]AdminWithdrawal, error) {
	var rows []AdminWithdrawal
	err := s.db.Model(&models.Withdrawal{}).
		Select("withdrawals.*, users.username, users.email").
		Joins("JOIN users ON users.id = withdrawals.user_id").
		Order("withdrawals.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Settle decides a pending withdrawal. Approval requires a numeric-only
// reference number and debits the ledger in the same transaction; rejection
// requires notes and leaves the balance untouched.
//
// Funds are not re-checked here: pending withdrawals are not escrowed, so
// concurrent approvals can drive a balance negative. That race is a known
// product question; it is logged when it happens rather than silently hidden.
func (s *WithdrawalService) Settle(id uint, status string, notes, referenceNumber string) (*models.Withdrawal, error) {
	if status != models.WithdrawalApproved && status != models.WithdrawalRejected {
		return nil, validationError("Status must be approved or rejected")
	}

	var withdrawal models.Withdrawal
	if err := s.db.First(&withdrawal, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("Withdrawal request not found")
		}
		return nil, err
	}
	if withdrawal.Status != models.WithdrawalPending {
		return nil, invalidStateError("Withdrawal request is not pending")
	}

	updates := map[string]interface{}{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}

	switch status {
	case models.WithdrawalApproved:
		if !referenceNumberPattern.MatchString(referenceNumber) {
			return nil, validationError("Reference number must contain only numbers")
		}
		updates["reference_number"] = referenceNumber
	case models.WithdrawalRejected:
		if notes == "" {
			return nil, validationError("Notes are required when rejecting a withdrawal")
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawal.ID, models.WithdrawalPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return invalidStateError("Withdrawal request is not pending")
		}

		if status == models.WithdrawalApproved {
			return s.ledger.Debit(tx, withdrawal.UserID, withdrawal.Amount)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == models.WithdrawalApproved {
		if balance, err := s.ledger.Get(withdrawal.UserID); err == nil && balance.Balance.IsNegative() {
			log.Printf("Warning: user %d balance went negative (%s) after withdrawal %d", withdrawal.UserID, balance.Balance, withdrawal.ID)
		}
	}

	log.Printf("Withdrawal %d %s", withdrawal.ID, status)
	go s.notifier.Notify(withdrawal.UserID, "withdrawal_"+status,
		"Your withdrawal of "+withdrawal.Amount.String()+" was "+status)

	if err := s.db.First(&withdrawal, id).Error; err != nil {
		return nil, err
	}
	return &withdrawal, nil
}
