package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"lootlink/internal/models"
)

// InvestmentService creates monetized offer instances with unique referral
// codes. No money moves here; the ledger is only touched when a referral
// against the investment is approved.
type InvestmentService struct {
	db        *gorm.DB
	clientURL string
	newCode   func(userID, lootID uint) string
}

func NewInvestmentService(db *gorm.DB, clientURL string) *InvestmentService {
	return &InvestmentService{db: db, clientURL: clientURL, newCode: generateReferralCode}
}

// InvestmentSummary is an investment with its loot context and completed
// referral aggregates, for the client dashboard.
type InvestmentSummary struct {
	models.Investment
	LootTitle       string          `json:"loot_title"`
	LootDescription string          `json:"loot_description"`
	ReferralCount   int64           `json:"referral_count"`
	ReferralAmount  decimal.Decimal `json:"referral_amount"`
}

// Create validates the price split against the loot cap and persists the
// investment with a store-unique referral code.
func (s *InvestmentService) Create(userID, lootID uint, customerAmount, earnAmount decimal.Decimal) (*models.Investment, string, error) {
	if !customerAmount.IsPositive() || !earnAmount.IsPositive() {
		return nil, "", validationError("All amounts must be greater than 0")
	}
	if earnAmount.GreaterThanOrEqual(customerAmount) {
		return nil, "", validationError("Earn amount should be less than customer amount")
	}

	var loot models.Loot
	if err := s.db.Where("id = ? AND is_active = ?", lootID, true).First(&loot).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, "", notFoundError("Loot not found or inactive")
		}
		return nil, "", err
	}

	total := customerAmount.Add(earnAmount)
	if total.GreaterThan(loot.MaxAmount) {
		return nil, "", capExceededError("Total amount cannot exceed %s", loot.MaxAmount)
	}

	// The unique index on referral_code is the actual uniqueness guarantee;
	// the retry only absorbs the unlikely suffix collision.
	var investment models.Investment
	for attempt := 0; ; attempt++ {
		investment = models.Investment{
			UserID:         userID,
			LootID:         lootID,
			Amount:         total,
			CustomerAmount: customerAmount,
			EarnAmount:     earnAmount,
			ReferralCode:   s.newCode(userID, lootID),
		}
		err := s.db.Create(&investment).Error
		if err == nil {
			break
		}
		if isDuplicateKeyError(err) && attempt < 2 {
			log.Printf("Referral code collision for user %d, retrying", userID)
			continue
		}
		return nil, "", fmt.Errorf("failed to create investment: %w", err)
	}

	url := s.ReferralURL(&investment)
	log.Printf("Investment %d created by user %d on loot %d (code %s)", investment.ID, userID, lootID, investment.ReferralCode)
	return &investment, url, nil
}

// ListByUser returns a client's investments with completed-referral aggregates.
func (s *InvestmentService) ListByUser(userID uint) ([]InvestmentSummary, error) {
	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&investments).Error; err != nil {
		return nil, err
	}

	summaries := make([]InvestmentSummary, 0, len(investments))
	for _, inv := range investments {
		var loot models.Loot
		if err := s.db.First(&loot, inv.LootID).Error; err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}

		var count int64
		if err := s.db.Model(&models.Referral{}).
			Where("investment_id = ? AND status = ?", inv.ID, models.ReferralCompleted).
			Count(&count).Error; err != nil {
			return nil, err
		}

		summaries = append(summaries, InvestmentSummary{
			Investment:      inv,
			LootTitle:       loot.Title,
			LootDescription: loot.Description,
			ReferralCount:   count,
			ReferralAmount:  inv.EarnAmount.Mul(decimal.NewFromInt(count)),
		})
	}
	return summaries, nil
}

// ReferralURL returns the shareable landing URL for an investment.
func (s *InvestmentService) ReferralURL(inv *models.Investment) string {
	return fmt.Sprintf("%s/referral/%s", s.clientURL, inv.ReferralCode)
}

// QRCode renders an investment's referral URL as a PNG. The investment must
// belong to the requesting user.
func (s *InvestmentService) QRCode(userID, investmentID uint) ([]byte, error) {
	var investment models.Investment
	if err := s.db.Where("id = ? AND user_id = ?", investmentID, userID).First(&investment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("Investment not found")
		}
		return nil, err
	}

	png, err := qrcode.Encode(s.ReferralURL(&investment), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// generateReferralCode builds owner_loot_suffix codes, as shared links expose
// them this keeps them short but traceable.
func generateReferralCode(userID, lootID uint) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%d_%s", userID, lootID, suffix)
}

// isDuplicateKeyError matches unique-index violations across postgres and
// the sqlite driver used in tests.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
