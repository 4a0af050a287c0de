package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lootlink/internal/models"
)

func TestClientCustomersDefaultsToCompleted(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)
	investment := seedInvestment(t, db, client.ID, loot.ID, 100, 25)

	for _, status := range []string{models.ReferralCompleted, models.ReferralPending} {
		customer := models.ClientCustomer{
			ClientID:       client.ID,
			LootID:         loot.ID,
			InvestmentID:   investment.ID,
			CustomerUPI:    status + "@upi",
			CustomerName:   "Ravi",
			CustomerMobile: "9000000001",
			Amount:         investment.Amount,
			Status:         status,
		}
		if err := db.Create(&customer).Error; err != nil {
			t.Fatalf("failed to seed customer: %v", err)
		}
	}

	service := NewReportService(db)

	rows, err := service.ClientCustomers(CustomerFilter{})
	if err != nil {
		t.Fatalf("ClientCustomers failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 completed row by default, got %d", len(rows))
	}
	if rows[0].ClientName != "alice" || rows[0].LootTitle != "Gold Plan" {
		t.Errorf("row missing joined context: %+v", rows[0])
	}

	rows, err = service.ClientCustomers(CustomerFilter{Status: models.ReferralPending})
	if err != nil {
		t.Fatalf("ClientCustomers pending failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 pending row, got %d", len(rows))
	}
}

func TestExportClientCustomers(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)
	investment := seedInvestment(t, db, client.ID, loot.ID, 100, 25)

	customer := models.ClientCustomer{
		ClientID:       client.ID,
		LootID:         loot.ID,
		InvestmentID:   investment.ID,
		CustomerUPI:    "customer@upi",
		CustomerName:   "Ravi",
		CustomerMobile: "9000000001",
		Amount:         investment.Amount,
		Status:         models.ReferralCompleted,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}

	service := NewReportService(db)

	workbook, err := service.ExportClientCustomers(CustomerFilter{})
	if err != nil {
		t.Fatalf("ExportClientCustomers failed: %v", err)
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(workbook, []byte("PK")) {
		t.Error("expected a zip-framed workbook")
	}
}

func TestSnapshotPlatformStatsUpserts(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)
	seedInvestment(t, db, client.ID, loot.ID, 100, 25)
	seedBalance(t, db, client.ID, 75, 120)

	service := NewReportService(db)
	day := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)

	stats, err := service.SnapshotPlatformStats(day)
	if err != nil {
		t.Fatalf("SnapshotPlatformStats failed: %v", err)
	}
	if stats.TotalClients != 1 || stats.TotalLoots != 1 || stats.TotalInvestments != 1 {
		t.Errorf("unexpected snapshot: %+v", stats)
	}
	if !stats.TotalEarned.Equal(decimal.NewFromInt(120)) {
		t.Errorf("expected total earned 120, got %s", stats.TotalEarned)
	}

	// a second run on the same day updates in place
	seedInvestment(t, db, client.ID, loot.ID, 200, 50)
	if _, err := service.SnapshotPlatformStats(day.Add(2 * time.Hour)); err != nil {
		t.Fatalf("second snapshot failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.PlatformStats{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 snapshot row for the day, got %d", count)
	}

	var reloaded models.PlatformStats
	if err := db.First(&reloaded).Error; err != nil {
		t.Fatalf("failed to reload snapshot: %v", err)
	}
	if reloaded.TotalInvestments != 2 {
		t.Errorf("expected updated snapshot with 2 investments, got %d", reloaded.TotalInvestments)
	}
}

func TestAnalyticsOverview(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)
	investment := seedInvestment(t, db, client.ID, loot.ID, 100, 25)
	seedBalance(t, db, client.ID, 75, 120)

	referral := models.Referral{
		InvestmentID: investment.ID,
		CustomerUPI:  "customer@upi",
		Amount:       investment.Amount,
		Status:       models.ReferralCompleted,
	}
	if err := db.Create(&referral).Error; err != nil {
		t.Fatalf("failed to seed referral: %v", err)
	}

	service := NewReportService(db)
	analytics, err := service.Analytics()
	if err != nil {
		t.Fatalf("Analytics failed: %v", err)
	}

	o := analytics.Overview
	if o.TotalClients != 1 || o.TotalInvestments != 1 || o.CompletedReferrals != 1 {
		t.Errorf("unexpected overview: %+v", o)
	}
	if len(analytics.RecentInvestments) != 1 {
		t.Errorf("expected 1 recent investment, got %d", len(analytics.RecentInvestments))
	}
	if len(analytics.RecentReferrals) != 1 {
		t.Errorf("expected 1 recent referral, got %d", len(analytics.RecentReferrals))
	}
}
