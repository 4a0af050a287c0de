package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lootlink/internal/services"
)

// ReferralHandler serves the public, unauthenticated referral surface.
type ReferralHandler struct {
	referralService *services.ReferralService
}

func NewReferralHandler(referralService *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// GetReferral returns the landing data for a referral code
func (h *ReferralHandler) GetReferral(c *gin.Context) {
	landing, err := h.referralService.GetLanding(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    landing,
	})
}

// ValidateReferral probes whether a referral code can accept submissions
func (h *ReferralHandler) ValidateReferral(c *gin.Context) {
	valid, lootTitle, err := h.referralService.Validate(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	if !valid {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"valid":   false,
			"message": "Invalid referral code",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"valid":   true,
		"data":    gin.H{"loot_title": lootTitle},
	})
}

// SubmitReferral accepts a customer submission and returns the redirect target
func (h *ReferralHandler) SubmitReferral(c *gin.Context) {
	var req struct {
		ReferralCode   string `json:"referral_code" binding:"required"`
		UPIID          string `json:"upi_id" binding:"required"`
		CustomerName   string `json:"customer_name" binding:"required"`
		CustomerMobile string `json:"customer_mobile" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Referral code, UPI ID, customer name, and mobile number are required",
		})
		return
	}

	result, err := h.referralService.Submit(req.ReferralCode, req.UPIID, req.CustomerName, req.CustomerMobile)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Referral submitted successfully! Redirecting to investment opportunity.",
		"data":    result,
	})
}

// GetReferralStats returns public aggregates for a code (completed only)
func (h *ReferralHandler) GetReferralStats(c *gin.Context) {
	stats, err := h.referralService.Stats(c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
