package handler

import (
	"errors"
	"net/http"

	"paisaback/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto HTTP statuses for the
// click/admin APIs. Webhook handlers never use this; they acknowledge.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
	case errors.Is(err, domain.ErrInvalidCoupon):
		c.JSON(http.StatusBadRequest, gin.H{"error": "coupon inactive or expired"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrClickNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrNoAffiliateLink):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no active affiliate link for store"})
	case errors.Is(err, domain.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": "expired"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, domain.ErrStateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "illegal state transition"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
