package services

import (
	log "github.com/sirupsen/logrus"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lootlink/internal/models"
)

// LootService is the admin-managed offer catalog.
type LootService struct {
	db *gorm.DB
}

func NewLootService(db *gorm.DB) *LootService {
	return &LootService{db: db}
}

// LootWithStats is a loot with investment aggregates for listings.
type LootWithStats struct {
	models.Loot
	InvestmentCount int64           `json:"investment_count"`
	TotalInvested   decimal.Decimal `json:"total_invested"`
}

// LootInput carries the admin-editable loot fields.
type LootInput struct {
	Title       string
	Description string
	MaxAmount   decimal.Decimal
	RedirectURL string
	IsActive    bool
}

// Get returns a loot by id.
func (s *LootService) Get(id uint) (*models.Loot, error) {
	var loot models.Loot
	if err := s.db.First(&loot, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, notFoundError("Loot not found")
		}
		return nil, err
	}
	return &loot, nil
}

// List returns loots with investment aggregates, optionally active only.
func (s *LootService) List(activeOnly bool) ([]LootWithStats, error) {
	var loots []models.Loot
	q := s.db.Order("created_at DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&loots).Error; err != nil {
		return nil, err
	}

	result := make([]LootWithStats, 0, len(loots))
	for _, loot := range loots {
		var count int64
		if err := s.db.Model(&models.Investment{}).Where("loot_id = ?", loot.ID).Count(&count).Error; err != nil {
			return nil, err
		}

		var total decimal.Decimal
		row := s.db.Model(&models.Investment{}).Where("loot_id = ?", loot.ID).
			Select("COALESCE(SUM(amount), 0)").Row()
		if err := row.Scan(&total); err != nil {
			total = decimal.Zero
		}

		result = append(result, LootWithStats{Loot: loot, InvestmentCount: count, TotalInvested: total})
	}
	return result, nil
}

// Create adds a new loot to the catalog.
func (s *LootService) Create(in LootInput) (*models.Loot, error) {
	if in.Title == "" || in.RedirectURL == "" {
		return nil, validationError("Title, max amount, and redirect URL are required")
	}
	if !in.MaxAmount.IsPositive() {
		return nil, validationError("Max amount must be greater than 0")
	}

	loot := models.Loot{
		Title:       in.Title,
		Description: in.Description,
		MaxAmount:   in.MaxAmount,
		RedirectURL: in.RedirectURL,
		IsActive:    true,
	}
	if err := s.db.Create(&loot).Error; err != nil {
		return nil, err
	}

	log.Printf("Loot %d created: %s (cap %s)", loot.ID, loot.Title, loot.MaxAmount)
	return &loot, nil
}

// Update edits an existing loot. Deactivation does not retract referral codes
// already issued against it; intake refuses them instead.
func (s *LootService) Update(id uint, in LootInput) (*models.Loot, error) {
	loot, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if in.Title == "" || in.RedirectURL == "" {
		return nil, validationError("Title, max amount, and redirect URL are required")
	}
	if !in.MaxAmount.IsPositive() {
		return nil, validationError("Max amount must be greater than 0")
	}

	if err := s.db.Model(loot).Updates(map[string]interface{}{
		"title":        in.Title,
		"description":  in.Description,
		"max_amount":   in.MaxAmount,
		"redirect_url": in.RedirectURL,
		"is_active":    in.IsActive,
	}).Error; err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete removes a loot from the catalog.
func (s *LootService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.db.Delete(&models.Loot{}, id).Error
}
