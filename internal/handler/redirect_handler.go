package handler

import (
	"errors"
	"net/http"

	"paisaback/config"
	"paisaback/internal/domain"
	"paisaback/internal/metrics"
	"paisaback/internal/service"

	"github.com/gin-gonic/gin"
)

type RedirectHandler struct {
	redirectSvc *service.RedirectService
	cfg         *config.Config
}

func NewRedirectHandler(redirectSvc *service.RedirectService, cfg *config.Config) *RedirectHandler {
	return &RedirectHandler{redirectSvc: redirectSvc, cfg: cfg}
}

// Resolve 302s a click token to its stored affiliate URL and sets the
// tracking cookie. Failures redirect to a friendly error page instead of
// surfacing a raw status to the shopper.
func (h *RedirectHandler) Resolve(c *gin.Context) {
	token := c.Param("token")
	url, err := h.redirectSvc.Resolve(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrExpired):
			metrics.Redirects.WithLabelValues("expired").Inc()
		case errors.Is(err, domain.ErrNotFound):
			metrics.Redirects.WithLabelValues("not_found").Inc()
		default:
			metrics.Redirects.WithLabelValues("error").Inc()
		}
		c.Redirect(http.StatusFound, h.cfg.Tracking.ErrorRedirectURL)
		return
	}

	c.SetCookie(h.cfg.Tracking.CookieName, token,
		int(h.cfg.Tracking.CookieMaxAge.Seconds()), "/", "", false, true)
	metrics.Redirects.WithLabelValues("ok").Inc()
	c.Redirect(http.StatusFound, url)
}
