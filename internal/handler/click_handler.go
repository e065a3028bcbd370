package handler

import (
	"net/http"

	"paisaback/config"
	"paisaback/internal/middleware"
	"paisaback/internal/service"

	"github.com/gin-gonic/gin"
)

type ClickHandler struct {
	clickSvc *service.ClickService
	cfg      *config.Config
}

func NewClickHandler(clickSvc *service.ClickService, cfg *config.Config) *ClickHandler {
	return &ClickHandler{clickSvc: clickSvc, cfg: cfg}
}

type createClickRequest struct {
	StoreID  uint  `json:"store_id" binding:"required"`
	CouponID *uint `json:"coupon_id"`
}

// Create issues a click token for a store visit. Anonymous shoppers are
// attributed by session cookie; logged-in shoppers by user id.
func (h *ClickHandler) Create(c *gin.Context) {
	var req createClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store_id required"})
		return
	}

	in := service.IssueInput{
		StoreID:   req.StoreID,
		CouponID:  req.CouponID,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if uid := middleware.GetUserID(c); uid != 0 {
		in.UserID = &uid
	}
	if sid, err := c.Cookie(h.cfg.Tracking.CookieName + "_sid"); err == nil {
		in.SessionID = sid
	}

	res, err := h.clickSvc.Issue(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetCookie(h.cfg.Tracking.CookieName+"_sid", res.SessionID,
		int(h.cfg.Tracking.CookieMaxAge.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"click_token":  res.Token,
		"redirect_url": res.RedirectURL,
		"expires_at":   res.ExpiresAt,
	})
}
