package handler

import (
	"net/http"
	"strconv"

	"paisaback/internal/middleware"
	"paisaback/internal/repository"
	"paisaback/internal/service"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	ledgerSvc     *service.LedgerService
	referralSvc   *service.ReferralService
	conversionSvc *service.ConversionService
	txRepo        *repository.TransactionRepository
}

func NewTransactionHandler(
	ledgerSvc *service.LedgerService,
	referralSvc *service.ReferralService,
	conversionSvc *service.ConversionService,
	txRepo *repository.TransactionRepository,
) *TransactionHandler {
	return &TransactionHandler{
		ledgerSvc:     ledgerSvc,
		referralSvc:   referralSvc,
		conversionSvc: conversionSvc,
		txRepo:        txRepo,
	}
}

type transitionRequest struct {
	Status          string `json:"status" binding:"required"`
	AdminNote       string `json:"admin_note"`
	RejectionReason string `json:"rejection_reason"`
}

// UpdateStatus applies pending -> approved/rejected/cancelled. Admin only.
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	t, err := h.ledgerSvc.Transition(c.Request.Context(), uint(id), req.Status, req.AdminNote, req.RejectionReason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// List returns transactions for the admin dashboard, filterable by status.
func (h *TransactionHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.txRepo.List(c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

// ListMine returns the authenticated shopper's transaction history.
func (h *TransactionHandler) ListMine(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.txRepo.ListByUser(middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

type reportConversionRequest struct {
	ClickToken       string `json:"click_token" binding:"required"`
	OrderID          string `json:"order_id" binding:"required"`
	OrderAmountPaise int64  `json:"order_amount_paise" binding:"required"`
}

// ReportConversion is the direct reconciliation entry point for
// conversions that never arrived by webhook. Admin only.
func (h *TransactionHandler) ReportConversion(c *gin.Context) {
	var req reportConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "click_token, order_id and order_amount_paise required"})
		return
	}
	t, err := h.conversionSvc.ReportConversion(c.Request.Context(), req.ClickToken, req.OrderID, req.OrderAmountPaise)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type rewardTransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateRewardStatus mirrors UpdateStatus for referral rewards.
func (h *TransactionHandler) UpdateRewardStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward id"})
		return
	}
	var req rewardTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status required"})
		return
	}
	reward, err := h.referralSvc.TransitionReward(c.Request.Context(), uint(id), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

// ListMyRewards returns referral rewards the authenticated user earned as
// a referrer.
func (h *TransactionHandler) ListMyRewards(c *gin.Context) {
	limit, offset := pagination(c)
	list, err := h.referralSvc.ListRewards(middleware.GetUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": list})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
