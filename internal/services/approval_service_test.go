package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lootlink/internal/config"
	"lootlink/internal/models"
	"lootlink/internal/notify"
)

// submitReferral runs a real intake so the ledger row and the shadow row
// exist, the same state an admin sees when reviewing the queue.
func submitReferral(t *testing.T, db *gorm.DB, code, upi string) *models.Referral {
	t.Helper()

	intake := NewReferralService(db, NewLedgerService(db), config.DedupAllow)
	result, err := intake.Submit(code, upi, "Ravi", "9000000001")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	return result.Referral
}

func TestApproveCreditsEarnAmount(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)
	investment := seedInvestment(t, db, client.ID, loot.ID, 100, 25)
	referral := submitReferral(t, db, investment.ReferralCode, "customer@upi")

	service := NewApprovalService(db, NewLedgerService(db), notify.LogNotifier{})

	redirect, err := service.Approve(referral.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if redirect != loot.RedirectURL {
		t.Errorf("expected redirect %q, got %q", loot.RedirectURL, redirect)
	}

	var updated models.Referral
	if err := db.First(&updated, referral.ID).Error; err != nil {
		t.Fatalf("failed to reload referral: %v", err)
	}
	if updated.Status != models.ReferralCompleted {
		t.Errorf("expected completed, got %q", updated.Status)
	}

	var customer models.ClientCustomer
	if err := db.Where("investment_id = ? AND customer_upi = ?", investment.ID, "customer@upi").
		First(&customer).Error; err != nil {
		t.Fatalf("shadow row missing: %v", err)
	}
	if customer.Status != models.ReferralCompleted {
		t.Errorf("expected completed shadow, got %q", customer.Status)
	}

	// the client is credited the earn amount, not the full customer amount
	var balance models.ClientBalance
	if err := db.Where("user_id = ?", client.ID).First(&balance).Error; err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if !balance.Balance.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected balance 25, got %s", balance.Balance)
	}
	if !balance.TotalEarned.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected total earned 25, got %s", balance.TotalEarned)
	}
}

func TestApproveIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)
	investment := seedInvestment(t, db, client.ID, loot.ID, 100, 25)
	referral := submitReferral(t, db, investment.ReferralCode, "customer@upi")

	service := NewApprovalService(db, NewLedgerService(db), notify.LogNotifier{})

	if _, err := service.Approve(referral.ID); err != nil {
		t.Fatalf("first Approve failed: %v", err)
	}

	_, err := service.Approve(referral.ID)
	wantKind(t, err, KindInvalidState)

	err = service.Reject(referral.ID, "too late")
	wantKind(t, err, KindInvalidState)

	// no double credit
	var balance models.ClientBalance
	if err := db.Where("user_id = ?", client.ID).First(&balance).Error; err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if !balance.Balance.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected balance 25 after repeat attempts, got %s", balance.Balance)
	}
}

func TestApproveUnknownReferral(t *testing.T) {
	db := setupTestDB(t)

	service := NewApprovalService(db, NewLedgerService(db), notify.LogNotifier{})

	_, err := service.Approve(12345)
	wantKind(t, err, KindNotFound)
}

func TestRejectDefaultReason(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)
	investment := seedInvestment(t, db, client.ID, loot.ID, 100, 25)
	referral := submitReferral(t, db, investment.ReferralCode, "customer@upi")

	service := NewApprovalService(db, NewLedgerService(db), notify.LogNotifier{})

	if err := service.Reject(referral.ID, ""); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	var updated models.Referral
	if err := db.First(&updated, referral.ID).Error; err != nil {
		t.Fatalf("failed to reload referral: %v", err)
	}
	if updated.Status != models.ReferralRejected {
		t.Errorf("expected rejected, got %q", updated.Status)
	}
	if updated.RejectionReason == nil || *updated.RejectionReason != "No reason provided" {
		t.Errorf("expected default rejection reason, got %v", updated.RejectionReason)
	}

	var customer models.ClientCustomer
	if err := db.Where("investment_id = ?", investment.ID).First(&customer).Error; err != nil {
		t.Fatalf("shadow row missing: %v", err)
	}
	if customer.Status != models.ReferralRejected {
		t.Errorf("expected rejected shadow, got %q", customer.Status)
	}

	// rejection never touches the ledger
	var balance models.ClientBalance
	if err := db.Where("user_id = ?", client.ID).First(&balance).Error; err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if !balance.Balance.IsZero() {
		t.Errorf("expected zero balance after reject, got %s", balance.Balance)
	}
}

func TestApproveRollsBackWithoutLedgerRow(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)
	investment := seedInvestment(t, db, client.ID, loot.ID, 100, 25)
	referral := submitReferral(t, db, investment.ReferralCode, "customer@upi")

	// force the credit to fail mid-transaction
	if err := db.Where("user_id = ?", client.ID).Delete(&models.ClientBalance{}).Error; err != nil {
		t.Fatalf("failed to delete ledger row: %v", err)
	}

	service := NewApprovalService(db, NewLedgerService(db), notify.LogNotifier{})

	if _, err := service.Approve(referral.ID); err == nil {
		t.Fatal("expected Approve to fail without a ledger row")
	}

	// the status flip rolled back with the credit
	var updated models.Referral
	if err := db.First(&updated, referral.ID).Error; err != nil {
		t.Fatalf("failed to reload referral: %v", err)
	}
	if updated.Status != models.ReferralPending {
		t.Errorf("expected referral still pending, got %q", updated.Status)
	}

	var customer models.ClientCustomer
	if err := db.Where("investment_id = ?", investment.ID).First(&customer).Error; err != nil {
		t.Fatalf("shadow row missing: %v", err)
	}
	if customer.Status != models.ReferralPending {
		t.Errorf("expected shadow still pending, got %q", customer.Status)
	}
}

func TestApproveLegacyInvestmentCreditsFullAmount(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)

	// legacy rows predate the customer/earn split
	investment := models.Investment{
		UserID:       client.ID,
		LootID:       loot.ID,
		Amount:       decimal.NewFromInt(80),
		ReferralCode: generateReferralCode(client.ID, loot.ID),
	}
	if err := db.Create(&investment).Error; err != nil {
		t.Fatalf("failed to seed legacy investment: %v", err)
	}
	referral := submitReferral(t, db, investment.ReferralCode, "customer@upi")

	service := NewApprovalService(db, NewLedgerService(db), notify.LogNotifier{})
	if _, err := service.Approve(referral.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	var balance models.ClientBalance
	if err := db.Where("user_id = ?", client.ID).First(&balance).Error; err != nil {
		t.Fatalf("ledger row missing: %v", err)
	}
	if !balance.Balance.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected full amount 80 credited, got %s", balance.Balance)
	}
}

func TestPendingQueue(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "alice")
	loot := seedLoot(t, db, "Gold Plan", 500)
	investment := seedInvestment(t, db, client.ID, loot.ID, 100, 25)
	referral := submitReferral(t, db, investment.ReferralCode, "customer@upi")

	service := NewApprovalService(db, NewLedgerService(db), notify.LogNotifier{})

	queue, err := service.Pending()
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(queue) != 1 {
		t.Fatalf("expected 1 pending referral, got %d", len(queue))
	}

	row := queue[0]
	if row.ID != referral.ID || row.ClientName != "alice" || row.LootTitle != "Gold Plan" {
		t.Errorf("queue row missing context: %+v", row)
	}
	if !row.EarnAmount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected earn amount 25, got %s", row.EarnAmount)
	}

	// decided referrals leave the queue
	if _, err := service.Approve(referral.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	queue, err = service.Pending()
	if err != nil {
		t.Fatalf("Pending failed: %v", err)
	}
	if len(queue) != 0 {
		t.Errorf("expected empty queue, got %d rows", len(queue))
	}
}
