package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lootlink/internal/services"
)

// AdminHandler serves the admin surface: catalog management, the approval
// queue, withdrawal settlement, client administration and reporting.
type AdminHandler struct {
	lootService       *services.LootService
	approvalService   *services.ApprovalService
	withdrawalService *services.WithdrawalService
	userService       *services.UserService
	investmentService *services.InvestmentService
	reportService     *services.ReportService
}

func NewAdminHandler(
	lootService *services.LootService,
	approvalService *services.ApprovalService,
	withdrawalService *services.WithdrawalService,
	userService *services.UserService,
	investmentService *services.InvestmentService,
	reportService *services.ReportService,
) *AdminHandler {
	return &AdminHandler{
		lootService:       lootService,
		approvalService:   approvalService,
		withdrawalService: withdrawalService,
		userService:       userService,
		investmentService: investmentService,
		reportService:     reportService,
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

// ---- Loot catalog ----

// GetLoots lists the full catalog, inactive loots included
func (h *AdminHandler) GetLoots(c *gin.Context) {
	loots, err := h.lootService.List(false)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": loots})
}

type lootRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	MaxAmount   float64 `json:"max_amount" binding:"required"`
	RedirectURL string  `json:"redirect_url" binding:"required"`
	IsActive    *bool   `json:"is_active"`
}

func (r *lootRequest) toInput() services.LootInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return services.LootInput{
		Title:       r.Title,
		Description: r.Description,
		MaxAmount:   decimal.NewFromFloat(r.MaxAmount),
		RedirectURL: r.RedirectURL,
		IsActive:    active,
	}
}

// CreateLoot adds a campaign to the catalog
func (h *AdminHandler) CreateLoot(c *gin.Context) {
	var req lootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Title, max amount, and redirect URL are required",
		})
		return
	}

	loot, err := h.lootService.Create(req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Loot created successfully",
		"data":    loot,
	})
}

// UpdateLoot edits a campaign
func (h *AdminHandler) UpdateLoot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req lootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Title, max amount, and redirect URL are required",
		})
		return
	}

	loot, err := h.lootService.Update(id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Loot updated successfully",
		"data":    loot,
	})
}

// DeleteLoot removes a campaign
func (h *AdminHandler) DeleteLoot(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.lootService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Loot deleted successfully"})
}

// ---- Referral approval ----

// GetPendingReferrals returns the review queue
func (h *AdminHandler) GetPendingReferrals(c *gin.Context) {
	pending, err := h.approvalService.Pending()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": pending})
}

// ApproveReferral completes a referral and credits the client
func (h *AdminHandler) ApproveReferral(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	redirectURL, err := h.approvalService.Approve(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Referral approved successfully",
		"data": gin.H{
			"referral_id":  id,
			"redirect_url": redirectURL,
		},
	})
}

// RejectReferral rejects a referral with a reason, no ledger effect
func (h *AdminHandler) RejectReferral(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.approvalService.Reject(id, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "No reason provided"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Referral rejected successfully",
		"data": gin.H{
			"referral_id": id,
			"reason":      reason,
		},
	})
}

// ---- Withdrawal settlement ----

// GetWithdrawals lists every withdrawal request with client context
func (h *AdminHandler) GetWithdrawals(c *gin.Context) {
	withdrawals, err := h.withdrawalService.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": withdrawals})
}

// SettleWithdrawal approves or rejects a pending withdrawal
func (h *AdminHandler) SettleWithdrawal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		Status          string `json:"status" binding:"required"`
		Notes           string `json:"notes"`
		ReferenceNumber string `json:"reference_number"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Status is required"})
		return
	}

	withdrawal, err := h.withdrawalService.Settle(id, req.Status, req.Notes, req.ReferenceNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Withdrawal %s successfully", req.Status),
		"data":    withdrawal,
	})
}

// ---- Ledger ----

// CreditClient applies a manual ledger credit outside the referral flow
func (h *AdminHandler) CreditClient(c *gin.Context) {
	var req struct {
		UserID uint    `json:"user_id" binding:"required"`
		Amount float64 `json:"amount" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid user_id and amount required"})
		return
	}

	balance, err := h.userService.Credit(req.UserID, decimal.NewFromFloat(req.Amount))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Balance credited",
		"data":    gin.H{"balance": balance.Balance},
	})
}

// ---- Client administration ----

// GetClients lists undeleted clients with aggregates
func (h *AdminHandler) GetClients(c *gin.Context) {
	clients, err := h.userService.Clients()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": clients})
}

// GetClient returns one client with investments and withdrawals
func (h *AdminHandler) GetClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	detail, err := h.userService.Detail(id, h.investmentService, h.withdrawalService)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": detail})
}

// BlockClient blocks a client account
func (h *AdminHandler) BlockClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.Block(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("User %s has been blocked successfully", user.Username),
	})
}

// UnblockClient lifts a block
func (h *AdminHandler) UnblockClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.Unblock(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("User %s has been unblocked successfully", user.Username),
	})
}

// DeleteClient soft deletes a client, keeping the identity and a balance snapshot
func (h *AdminHandler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.userService.SoftDelete(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("User %s has been deleted and all data cleared", user.Username),
	})
}

// GetBlockedClients lists blocked clients
func (h *AdminHandler) GetBlockedClients(c *gin.Context) {
	clients, err := h.userService.BlockedClients()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": clients})
}

// GetDeletedClients lists soft-deleted clients with balance snapshots
func (h *AdminHandler) GetDeletedClients(c *gin.Context) {
	clients, err := h.userService.DeletedClients()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": clients})
}

// ---- Reporting ----

func customerFilterFromQuery(c *gin.Context) services.CustomerFilter {
	var filter services.CustomerFilter
	if v := c.Query("client_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			u := uint(id)
			filter.ClientID = &u
		}
	}
	if v := c.Query("loot_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			u := uint(id)
			filter.LootID = &u
		}
	}
	filter.Status = c.Query("status")
	return filter
}

// GetClientCustomers returns the filtered customer report
func (h *AdminHandler) GetClientCustomers(c *gin.Context) {
	customers, err := h.reportService.ClientCustomers(customerFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": customers})
}

// ExportClientCustomers streams the customer report as an XLSX workbook
func (h *AdminHandler) ExportClientCustomers(c *gin.Context) {
	workbook, err := h.reportService.ExportClientCustomers(customerFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("client-customers-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}

// GetClientsCustomersSummary returns per-client completed-customer aggregates
func (h *AdminHandler) GetClientsCustomersSummary(c *gin.Context) {
	summary, err := h.reportService.ClientsCustomersSummary()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

// GetAnalytics returns the dashboard overview and recent activity
func (h *AdminHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.reportService.Analytics()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": analytics})
}
