package services

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lootlink/internal/models"
)

// setupTestDB opens a named in-memory sqlite database per test. cache=shared
// keeps the schema visible across the pooled connections gorm opens.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.ClientBalance{},
		&models.Loot{},
		&models.Investment{},
		&models.Referral{},
		&models.ClientCustomer{},
		&models.Withdrawal{},
		&models.PlatformStats{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func seedClient(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Mobile:   "9876543210",
		Role:     models.RoleClient,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}
	return &user
}

// seedPayoutClient is a client with withdrawal setup completed.
func seedPayoutClient(t *testing.T, db *gorm.DB, username, password, upi string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	hashStr := string(hash)

	user := seedClient(t, db, username)
	if err := db.Model(user).Updates(map[string]interface{}{
		"withdrawal_password":  hashStr,
		"upi_id":               upi,
		"has_setup_withdrawal": true,
	}).Error; err != nil {
		t.Fatalf("failed to set withdrawal credentials: %v", err)
	}
	return user
}

func seedLoot(t *testing.T, db *gorm.DB, title string, maxAmount int64) *models.Loot {
	t.Helper()

	loot := models.Loot{
		Title:       title,
		Description: "test campaign",
		MaxAmount:   decimal.NewFromInt(maxAmount),
		RedirectURL: "https://partner.example.com/invest",
		IsActive:    true,
	}
	if err := db.Create(&loot).Error; err != nil {
		t.Fatalf("failed to seed loot: %v", err)
	}
	return &loot
}

func deactivateLoot(t *testing.T, db *gorm.DB, loot *models.Loot) {
	t.Helper()
	// Update instead of Create so the default:true tag cannot swallow false.
	if err := db.Model(loot).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate loot: %v", err)
	}
}

func seedInvestment(t *testing.T, db *gorm.DB, userID, lootID uint, customer, earn int64) *models.Investment {
	t.Helper()

	customerAmount := decimal.NewFromInt(customer)
	earnAmount := decimal.NewFromInt(earn)
	investment := models.Investment{
		UserID:         userID,
		LootID:         lootID,
		Amount:         customerAmount.Add(earnAmount),
		CustomerAmount: customerAmount,
		EarnAmount:     earnAmount,
		ReferralCode:   generateReferralCode(userID, lootID),
	}
	if err := db.Create(&investment).Error; err != nil {
		t.Fatalf("failed to seed investment: %v", err)
	}
	return &investment
}

func seedBalance(t *testing.T, db *gorm.DB, userID uint, balance, totalEarned int64) {
	t.Helper()

	row := models.ClientBalance{
		UserID:      userID,
		Balance:     decimal.NewFromInt(balance),
		TotalEarned: decimal.NewFromInt(totalEarned),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}
}

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	got, ok := KindOf(err)
	if !ok {
		t.Fatalf("expected %s error, got untyped: %v", kind, err)
	}
	if got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}
