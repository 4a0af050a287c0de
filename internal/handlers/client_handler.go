package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lootlink/internal/auth"
	"lootlink/internal/services"
)

// ClientHandler serves the authenticated client surface: loots, investments,
// balance, referral history, withdrawals and profile settings.
type ClientHandler struct {
	lootService       *services.LootService
	investmentService *services.InvestmentService
	referralService   *services.ReferralService
	ledgerService     *services.LedgerService
	withdrawalService *services.WithdrawalService
	userService       *services.UserService
}

func NewClientHandler(
	lootService *services.LootService,
	investmentService *services.InvestmentService,
	referralService *services.ReferralService,
	ledgerService *services.LedgerService,
	withdrawalService *services.WithdrawalService,
	userService *services.UserService,
) *ClientHandler {
	return &ClientHandler{
		lootService:       lootService,
		investmentService: investmentService,
		referralService:   referralService,
		ledgerService:     ledgerService,
		withdrawalService: withdrawalService,
		userService:       userService,
	}
}

// GetLoots lists active loots for the invest screen
func (h *ClientHandler) GetLoots(c *gin.Context) {
	loots, err := h.lootService.List(true)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    loots,
	})
}

// CreateInvestment creates an offer instance and returns its referral link
func (h *ClientHandler) CreateInvestment(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	var req struct {
		LootID         uint    `json:"loot_id" binding:"required"`
		CustomerAmount float64 `json:"customer_amount" binding:"required"`
		EarnAmount     float64 `json:"earn_amount" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Loot ID, customer amount, and earn amount are required",
		})
		return
	}

	investment, url, err := h.investmentService.Create(
		userID,
		req.LootID,
		decimal.NewFromFloat(req.CustomerAmount),
		decimal.NewFromFloat(req.EarnAmount),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Custom offer created successfully",
		"data": gin.H{
			"investment":   investment,
			"referralCode": investment.ReferralCode,
			"referralUrl":  url,
		},
	})
}

// GetInvestments lists the client's investments with referral aggregates
func (h *ClientHandler) GetInvestments(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	investments, err := h.investmentService.ListByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    investments,
	})
}

// GetInvestmentQR renders the referral link of one investment as a PNG
func (h *ClientHandler) GetInvestmentQR(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid investment id"})
		return
	}

	png, err := h.investmentService.QRCode(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// GetBalance returns the client's ledger row
func (h *ClientHandler) GetBalance(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	balance, err := h.ledgerService.Get(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"balance":      balance.Balance,
			"total_earned": balance.TotalEarned,
		},
	})
}

// GetReferrals returns the client's referral history
func (h *ClientHandler) GetReferrals(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	referrals, err := h.referralService.HistoryByClient(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    referrals,
	})
}

// RequestWithdrawal creates a pending withdrawal request
func (h *ClientHandler) RequestWithdrawal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	var req struct {
		Amount             float64 `json:"amount" binding:"required"`
		WithdrawalPassword string  `json:"withdrawal_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Amount and withdrawal password are required",
		})
		return
	}

	withdrawal, err := h.withdrawalService.Request(userID, decimal.NewFromFloat(req.Amount), req.WithdrawalPassword)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Withdrawal request submitted successfully",
		"data":    withdrawal,
	})
}

// GetWithdrawals returns the client's withdrawal history
func (h *ClientHandler) GetWithdrawals(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	withdrawals, err := h.withdrawalService.ListByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    withdrawals,
	})
}

// GetProfile returns the client's profile settings
func (h *ClientHandler) GetProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	profile, err := h.userService.Profile(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}

// UpdateProfile changes the payout UPI id, gated by the withdrawal password
func (h *ClientHandler) UpdateProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	var req struct {
		UPIID              string `json:"upi_id" binding:"required"`
		WithdrawalPassword string `json:"withdrawal_password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "UPI ID and withdrawal password are required",
		})
		return
	}

	if err := h.userService.UpdateUPI(userID, req.UPIID, req.WithdrawalPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "UPI ID updated",
	})
}

// SetupWithdrawal sets the withdrawal password and UPI id for the first time
func (h *ClientHandler) SetupWithdrawal(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	var req struct {
		WithdrawalPassword string `json:"withdrawal_password" binding:"required"`
		UPIID              string `json:"upi_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Withdrawal password and UPI ID are required",
		})
		return
	}

	if err := h.userService.SetupWithdrawal(userID, req.WithdrawalPassword, req.UPIID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Withdrawal setup completed successfully",
	})
}
