package service

import (
	"context"
	"errors"
	"time"

	"paisaback/internal/cache"
	"paisaback/internal/domain"
	"paisaback/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RedirectService resolves click tokens to their stored affiliate URLs.
// Resolution is a pure read: repeated lookups of a valid token return the
// identical URL. Expiry is enforced lazily at read time.
type RedirectService struct {
	clickRepo *repository.ClickRepository
	cache     cache.ClickCache
	log       *zap.Logger
}

func NewRedirectService(clickRepo *repository.ClickRepository, clickCache cache.ClickCache, log *zap.Logger) *RedirectService {
	return &RedirectService{clickRepo: clickRepo, cache: clickCache, log: log}
}

// Resolve returns the redirect URL for a token, ErrNotFound for unknown
// tokens and ErrExpired past the redirect validity window.
func (s *RedirectService) Resolve(ctx context.Context, token string) (string, error) {
	now := time.Now()

	if cached, err := s.cache.Get(ctx, token); err != nil {
		s.log.Warn("click cache read", zap.Error(err))
	} else if cached != nil {
		if now.After(cached.RedirectExpiresAt) {
			s.expire(ctx, cached.ClickID, token)
			return "", domain.ErrExpired
		}
		return cached.RedirectURL, nil
	}

	click, err := s.clickRepo.GetByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	if click.Status == domain.ClickStatusExpired || now.After(click.RedirectExpiresAt) {
		s.expire(ctx, click.ID, token)
		return "", domain.ErrExpired
	}

	if err := s.cache.Set(ctx, token, &cache.CachedClick{
		ClickID:           click.ID,
		RedirectURL:       click.RedirectURL,
		RedirectExpiresAt: click.RedirectExpiresAt,
	}, time.Until(click.RedirectExpiresAt)); err != nil {
		s.log.Warn("click cache backfill", zap.Error(err))
	}
	return click.RedirectURL, nil
}

func (s *RedirectService) expire(ctx context.Context, clickID uint, token string) {
	if err := s.clickRepo.MarkExpired(clickID); err != nil {
		s.log.Warn("mark click expired", zap.Uint("click_id", clickID), zap.Error(err))
	}
	if err := s.cache.Delete(ctx, token); err != nil {
		s.log.Warn("click cache delete", zap.Error(err))
	}
}
