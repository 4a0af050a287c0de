package services

import (
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"lootlink/internal/config"
	"lootlink/internal/models"
)

// ReferralService is the public intake: landing-page data, submission and
// public stats for a referral code. Submissions are unauthenticated.
type ReferralService struct {
	db          *gorm.DB
	ledger      *LedgerService
	dedupPolicy string
}

func NewReferralService(db *gorm.DB, ledger *LedgerService, dedupPolicy string) *ReferralService {
	return &ReferralService{db: db, ledger: ledger, dedupPolicy: dedupPolicy}
}

// ReferralLanding is the public display data for a referral code.
type ReferralLanding struct {
	LootTitle       string          `json:"loot_title"`
	LootDescription string          `json:"loot_description"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
	ClientName      string          `json:"client_name"`
	ReferralCode    string          `json:"referral_code"`
}

// SubmitResult is returned on a successful intake; RedirectURL is where the
// customer browser should be sent next.
type SubmitResult struct {
	Referral    *models.Referral `json:"referral"`
	LootTitle   string           `json:"loot_title"`
	Status      string           `json:"status"`
	RedirectURL string           `json:"redirect_url"`
}

// ReferralCodeStats are the public aggregates for a code, completed referrals only.
type ReferralCodeStats struct {
	ReferralCode     string          `json:"referral_code"`
	LootTitle        string          `json:"loot_title"`
	TotalReferrals   int64           `json:"total_referrals"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InvestmentAmount decimal.Decimal `json:"investment_amount"`
}

// findInvestment resolves a referral code to its investment and loot.
func (s *ReferralService) findInvestment(code string) (*models.Investment, *models.Loot, error) {
	var investment models.Investment
	if err := s.db.Where("referral_code = ?", code).First(&investment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, notFoundError("Referral link not found or invalid")
		}
		return nil, nil, err
	}

	var loot models.Loot
	if err := s.db.First(&loot, investment.LootID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, notFoundError("Referral link not found or invalid")
		}
		return nil, nil, err
	}

	return &investment, &loot, nil
}

// GetLanding returns the public landing data for a referral code.
func (s *ReferralService) GetLanding(code string) (*ReferralLanding, error) {
	investment, loot, err := s.findInvestment(code)
	if err != nil {
		return nil, err
	}
	if !loot.IsActive {
		return nil, validationError("This investment opportunity is no longer available")
	}

	var client models.User
	if err := s.db.First(&client, investment.UserID).Error; err != nil {
		return nil, err
	}

	return &ReferralLanding{
		LootTitle:       loot.Title,
		LootDescription: loot.Description,
		MaxAmount:       loot.MaxAmount,
		ClientName:      client.Username,
		ReferralCode:    code,
	}, nil
}

// Validate is a lightweight probe used by the landing page before rendering
// the form. Unknown and inactive codes are reported, not errored.
func (s *ReferralService) Validate(code string) (bool, string, error) {
	_, loot, err := s.findInvestment(code)
	if err != nil {
		if kind, ok := KindOf(err); ok && kind == KindNotFound {
			return false, "", nil
		}
		return false, "", err
	}
	if !loot.IsActive {
		return false, loot.Title, nil
	}
	return true, loot.Title, nil
}

// Submit records a customer submission: one pending referral plus its
// denormalized client_customers shadow, created as one transaction.
func (s *ReferralService) Submit(code, upiID, customerName, customerMobile string) (*SubmitResult, error) {
	code = strings.TrimSpace(code)
	upiID = strings.TrimSpace(upiID)
	customerName = strings.TrimSpace(customerName)
	customerMobile = strings.TrimSpace(customerMobile)

	if code == "" || upiID == "" || customerName == "" || customerMobile == "" {
		return nil, validationError("Referral code, UPI ID, customer name, and mobile number are required")
	}

	investment, loot, err := s.findInvestment(code)
	if err != nil {
		return nil, err
	}
	if !loot.IsActive {
		return nil, validationError("This investment opportunity is no longer available")
	}

	if s.dedupPolicy == config.DedupReject {
		var existing int64
		if err := s.db.Model(&models.Referral{}).
			Where("investment_id = ? AND customer_upi = ?", investment.ID, upiID).
			Count(&existing).Error; err != nil {
			return nil, err
		}
		if existing > 0 {
			return nil, validationError("A submission for this UPI ID already exists")
		}
	}

	referral := models.Referral{
		InvestmentID: investment.ID,
		CustomerUPI:  upiID,
		Amount:       investment.Amount,
		Status:       models.ReferralPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&referral).Error; err != nil {
			return err
		}
		customer := models.ClientCustomer{
			ClientID:       investment.UserID,
			LootID:         investment.LootID,
			InvestmentID:   investment.ID,
			CustomerUPI:    upiID,
			CustomerName:   customerName,
			CustomerMobile: customerMobile,
			Amount:         investment.Amount,
			Status:         models.ReferralPending,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}
		// The owning client gets a ledger row before any credit can target it.
		return s.ledger.EnsureRow(tx, investment.UserID)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Referral %d submitted against investment %d (code %s)", referral.ID, investment.ID, code)
	return &SubmitResult{
		Referral:    &referral,
		LootTitle:   loot.Title,
		Status:      models.ReferralPending,
		RedirectURL: loot.RedirectURL,
	}, nil
}

// Stats returns the public aggregates for a code, counting completed referrals only.
func (s *ReferralService) Stats(code string) (*ReferralCodeStats, error) {
	investment, loot, err := s.findInvestment(code)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Referral{}).
		Where("investment_id = ? AND status = ?", investment.ID, models.ReferralCompleted).
		Count(&count).Error; err != nil {
		return nil, err
	}

	var total decimal.Decimal
	row := s.db.Model(&models.Referral{}).
		Where("investment_id = ? AND status = ?", investment.ID, models.ReferralCompleted).
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		total = decimal.Zero
	}

	return &ReferralCodeStats{
		ReferralCode:     code,
		LootTitle:        loot.Title,
		TotalReferrals:   count,
		TotalAmount:      total,
		InvestmentAmount: investment.Amount,
	}, nil
}

// ClientReferral is a referral joined with its investment and loot context,
// for the client history view.
type ClientReferral struct {
	models.Referral
	ReferralCode string          `json:"referral_code"`
	EarnAmount   decimal.Decimal `json:"earn_amount"`
	LootTitle    string          `json:"loot_title"`
}

// HistoryByClient returns all referrals submitted against a client's investments.
func (s *ReferralService) HistoryByClient(userID uint) ([]ClientReferral, error) {
	var referrals []models.Referral
	if err := s.db.
		Joins("JOIN investments ON investments.id = referrals.investment_id").
		Where("investments.user_id = ?", userID).
		Order("referrals.created_at DESC").
		Find(&referrals).Error; err != nil {
		return nil, err
	}

	history := make([]ClientReferral, 0, len(referrals))
	for _, r := range referrals {
		var investment models.Investment
		if err := s.db.First(&investment, r.InvestmentID).Error; err != nil {
			return nil, err
		}
		var loot models.Loot
		if err := s.db.First(&loot, investment.LootID).Error; err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		history = append(history, ClientReferral{
			Referral:     r,
			ReferralCode: investment.ReferralCode,
			EarnAmount:   investment.EarnAmount,
			LootTitle:    loot.Title,
		})
	}
	return history, nil
}
