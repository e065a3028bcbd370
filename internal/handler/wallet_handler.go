package handler

import (
	"net/http"

	"paisaback/internal/middleware"
	"paisaback/internal/repository"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	walletRepo *repository.WalletRepository
}

func NewWalletHandler(walletRepo *repository.WalletRepository) *WalletHandler {
	return &WalletHandler{walletRepo: walletRepo}
}

// GetBalance returns the authenticated user's cashback buckets.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	w, err := h.walletRepo.GetOrCreate(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "wallet error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pending_paise":   w.PendingPaise,
		"available_paise": w.AvailablePaise,
		"withdrawn_paise": w.WithdrawnPaise,
		"currency":        w.Currency,
	})
}
