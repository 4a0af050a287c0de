package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLootCreateValidation(t *testing.T) {
	db := setupTestDB(t)

	service := NewLootService(db)

	_, err := service.Create(LootInput{Title: "", MaxAmount: decimal.NewFromInt(500), RedirectURL: "https://x"})
	wantKind(t, err, KindValidation)

	_, err = service.Create(LootInput{Title: "Gold Plan", MaxAmount: decimal.Zero, RedirectURL: "https://x"})
	wantKind(t, err, KindValidation)

	loot, err := service.Create(LootInput{
		Title:       "Gold Plan",
		Description: "test campaign",
		MaxAmount:   decimal.NewFromInt(500),
		RedirectURL: "https://partner.example.com/invest",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !loot.IsActive {
		t.Error("expected new loot active")
	}
}

func TestLootListActiveOnly(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	active := seedLoot(t, db, "Active Plan", 500)
	inactive := seedLoot(t, db, "Retired Plan", 300)
	deactivateLoot(t, db, inactive)

	seedInvestment(t, db, client.ID, active.ID, 100, 25)
	seedInvestment(t, db, client.ID, active.ID, 200, 50)

	service := NewLootService(db)

	all, err := service.List(false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 loots, got %d", len(all))
	}

	activeOnly, err := service.List(true)
	if err != nil {
		t.Fatalf("List active failed: %v", err)
	}
	if len(activeOnly) != 1 {
		t.Fatalf("expected 1 active loot, got %d", len(activeOnly))
	}

	stats := activeOnly[0]
	if stats.InvestmentCount != 2 {
		t.Errorf("expected 2 investments, got %d", stats.InvestmentCount)
	}
	if !stats.TotalInvested.Equal(decimal.NewFromInt(375)) {
		t.Errorf("expected total invested 375, got %s", stats.TotalInvested)
	}
}

func TestLootUpdateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	loot := seedLoot(t, db, "Gold Plan", 500)

	service := NewLootService(db)

	updated, err := service.Update(loot.ID, LootInput{
		Title:       "Gold Plan v2",
		MaxAmount:   decimal.NewFromInt(800),
		RedirectURL: loot.RedirectURL,
		IsActive:    false,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Gold Plan v2" || updated.IsActive {
		t.Errorf("update not applied: %+v", updated)
	}
	if !updated.MaxAmount.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected cap 800, got %s", updated.MaxAmount)
	}

	if err := service.Delete(loot.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	_, err = service.Get(loot.ID)
	wantKind(t, err, KindNotFound)

	err = service.Delete(9999)
	wantKind(t, err, KindNotFound)
}
