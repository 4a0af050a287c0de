package services

import (
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lootlink/internal/models"
)

// UserService covers client account administration (credit, block, soft
// delete) and the client's own withdrawal/profile settings.
type UserService struct {
	db     *gorm.DB
	ledger *LedgerService
}

func NewUserService(db *gorm.DB, ledger *LedgerService) *UserService {
	return &UserService{db: db, ledger: ledger}
}

// getClient loads an undeleted client account.
func (s *UserService) getClient(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}
	if user.Role != models.RoleClient || user.IsDeleted() {
		return nil, notFoundError("Client not found")
	}
	return &user, nil
}

// Credit applies a manual admin credit to a client's ledger, creating the
// ledger row on first credit.
func (s *UserService) Credit(userID uint, amount decimal.Decimal) (*models.ClientBalance, error) {
	if !amount.IsPositive() {
		return nil, validationError("Valid user_id and amount required")
	}
	if _, err := s.getClient(userID); err != nil {
		return nil, err
	}

	if err := s.ledger.Credit(s.db, userID, amount); err != nil {
		return nil, err
	}

	log.Printf("Admin credited %s to user %d", amount, userID)
	return s.ledger.Get(userID)
}

// Block prevents a client from authenticating.
func (s *UserService) Block(userID uint) (*models.User, error) {
	user, err := s.getClient(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("is_blocked", true).Error; err != nil {
		return nil, err
	}
	log.Printf("User %d (%s) blocked", user.ID, user.Username)
	return user, nil
}

// Unblock lifts a block.
func (s *UserService) Unblock(userID uint) (*models.User, error) {
	user, err := s.getClient(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("is_blocked", false).Error; err != nil {
		return nil, err
	}
	log.Printf("User %d (%s) unblocked", user.ID, user.Username)
	return user, nil
}

// SoftDelete clears a client's data but keeps the identity row with a
// snapshot of the final balance. Username and email keep their unique slots,
// so the same identity cannot be re-registered while the row remains.
func (s *UserService) SoftDelete(userID uint) (*models.User, error) {
	user, err := s.getClient(userID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"investment_id IN (?)",
			tx.Model(&models.Investment{}).Select("id").Where("user_id = ?", userID),
		).Delete(&models.Referral{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", userID).Delete(&models.ClientCustomer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Investment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Withdrawal{}).Error; err != nil {
			return err
		}

		var balance models.ClientBalance
		snapshot := decimal.Zero
		snapshotEarned := decimal.Zero
		if err := tx.Where("user_id = ?", userID).First(&balance).Error; err == nil {
			snapshot = balance.Balance
			snapshotEarned = balance.TotalEarned
			if err := tx.Delete(&balance).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		now := time.Now()
		return tx.Model(user).Updates(map[string]interface{}{
			"deleted_at":           now,
			"upi_id":               nil,
			"withdrawal_password":  nil,
			"has_setup_withdrawal": false,
			"is_blocked":           false,
			"deleted_balance":      snapshot,
			"deleted_total_earned": snapshotEarned,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("User %d (%s) soft deleted", user.ID, user.Username)
	return user, nil
}

// ClientOverview is a client row with activity aggregates for admin listings.
type ClientOverview struct {
	ID               uint            `json:"id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	Mobile           string          `json:"mobile"`
	IsBlocked        bool            `json:"is_blocked"`
	Balance          decimal.Decimal `json:"balance"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	TotalInvestments int64           `json:"total_investments"`
	TotalReferrals   int64           `json:"total_referrals"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Clients lists undeleted clients with balances and activity counts.
func (s *UserService) Clients() ([]ClientOverview, error) {
	var users []models.User
	if err := s.db.Where("role = ? AND deleted_at IS NULL", models.RoleClient).
		Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	overviews := make([]ClientOverview, 0, len(users))
	for _, u := range users {
		overview := ClientOverview{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Mobile:    u.Mobile,
			IsBlocked: u.IsBlocked,
			CreatedAt: u.CreatedAt,
		}

		var balance models.ClientBalance
		if err := s.db.Where("user_id = ?", u.ID).First(&balance).Error; err == nil {
			overview.Balance = balance.Balance
			overview.TotalEarned = balance.TotalEarned
		}

		if err := s.db.Model(&models.Investment{}).Where("user_id = ?", u.ID).
			Count(&overview.TotalInvestments).Error; err != nil {
			return nil, err
		}
		if err := s.db.Model(&models.Referral{}).
			Joins("JOIN investments ON investments.id = referrals.investment_id").
			Where("investments.user_id = ?", u.ID).
			Count(&overview.TotalReferrals).Error; err != nil {
			return nil, err
		}

		overviews = append(overviews, overview)
	}
	return overviews, nil
}

// ClientDetail bundles a client with their investments and withdrawals.
type ClientDetail struct {
	Client      ClientOverview      `json:"client"`
	Investments []InvestmentSummary `json:"investments"`
	Withdrawals []models.Withdrawal `json:"withdrawals"`
}

// Detail returns the full admin view of one client.
func (s *UserService) Detail(userID uint, investments *InvestmentService, withdrawals *WithdrawalService) (*ClientDetail, error) {
	user, err := s.getClient(userID)
	if err != nil {
		return nil, err
	}

	overview := ClientOverview{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Mobile:    user.Mobile,
		IsBlocked: user.IsBlocked,
		CreatedAt: user.CreatedAt,
	}
	if balance, err := s.ledger.Get(userID); err == nil {
		overview.Balance = balance.Balance
		overview.TotalEarned = balance.TotalEarned
	}

	invs, err := investments.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	wds, err := withdrawals.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	return &ClientDetail{Client: overview, Investments: invs, Withdrawals: wds}, nil
}

// BlockedClients lists blocked, undeleted clients.
func (s *UserService) BlockedClients() ([]ClientOverview, error) {
	clients, err := s.Clients()
	if err != nil {
		return nil, err
	}
	blocked := make([]ClientOverview, 0)
	for _, c := range clients {
		if c.IsBlocked {
			blocked = append(blocked, c)
		}
	}
	return blocked, nil
}

// DeletedClients lists soft-deleted clients with their balance snapshots.
func (s *UserService) DeletedClients() ([]models.User, error) {
	var users []models.User
	if err := s.db.Where("role = ? AND deleted_at IS NOT NULL", models.RoleClient).
		Order("deleted_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SetupWithdrawal sets the withdrawal password and UPI id for the first time.
func (s *UserService) SetupWithdrawal(userID uint, withdrawalPassword, upiID string) error {
	if withdrawalPassword == "" || upiID == "" {
		return validationError("Withdrawal password and UPI ID are required")
	}
	if len(withdrawalPassword) < 4 {
		return validationError("Withdrawal password must be at least 4 characters long")
	}

	user, err := s.getClient(userID)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(withdrawalPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	hashStr := string(hash)
	return s.db.Model(user).Updates(map[string]interface{}{
		"withdrawal_password":  hashStr,
		"upi_id":               upiID,
		"has_setup_withdrawal": true,
	}).Error
}

// UpdateUPI changes the payout address. The withdrawal password is required
// so a stolen session cannot redirect payouts.
func (s *UserService) UpdateUPI(userID uint, upiID, withdrawalPassword string) error {
	if len(upiID) < 3 {
		return validationError("Valid UPI ID required")
	}

	user, err := s.getClient(userID)
	if err != nil {
		return err
	}
	if user.WithdrawalPassword == nil {
		return preconditionError("Withdrawal setup not completed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.WithdrawalPassword), []byte(withdrawalPassword)); err != nil {
		return authError("Incorrect withdrawal password")
	}

	return s.db.Model(user).Update("upi_id", upiID).Error
}

// Profile returns the client's own profile settings.
func (s *UserService) Profile(userID uint) (map[string]interface{}, error) {
	user, err := s.getClient(userID)
	if err != nil {
		return nil, err
	}
	upi := ""
	if user.UPIID != nil {
		upi = *user.UPIID
	}
	return map[string]interface{}{
		"upi_id":               upi,
		"has_setup_withdrawal": user.HasSetupWithdrawal,
	}, nil
}
