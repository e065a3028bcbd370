package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"paisaback/config"
	"paisaback/internal/cache"
	"paisaback/internal/domain"
	"paisaback/internal/metrics"
	"paisaback/internal/models"
	"paisaback/internal/repository"
	"paisaback/pkg/affiliate"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClickService mints click tokens and persists the click records that
// later conversions attribute back to.
type ClickService struct {
	cfg       *config.Config
	registry  *affiliate.Registry
	storeRepo *repository.StoreRepository
	clickRepo *repository.ClickRepository
	cache     cache.ClickCache
	log       *zap.Logger
}

func NewClickService(
	cfg *config.Config,
	registry *affiliate.Registry,
	storeRepo *repository.StoreRepository,
	clickRepo *repository.ClickRepository,
	clickCache cache.ClickCache,
	log *zap.Logger,
) *ClickService {
	return &ClickService{
		cfg:       cfg,
		registry:  registry,
		storeRepo: storeRepo,
		clickRepo: clickRepo,
		cache:     clickCache,
		log:       log,
	}
}

type IssueInput struct {
	StoreID   uint
	CouponID  *uint
	UserID    *uint // nil for anonymous shoppers
	SessionID string
	IP        string
	UserAgent string
}

type IssueResult struct {
	Token       string
	RedirectURL string
	SessionID   string
	ExpiresAt   time.Time
}

// Issue validates the store and coupon, picks the best affiliate link,
// mints a unique token and persists the ClickRecord.
func (s *ClickService) Issue(ctx context.Context, in IssueInput) (*IssueResult, error) {
	store, err := s.storeRepo.GetByID(in.StoreID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !store.IsActive {
		return nil, domain.ErrNotFound
	}

	couponCode := ""
	if in.CouponID != nil {
		cp, err := s.storeRepo.GetCoupon(*in.CouponID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrInvalidCoupon
			}
			return nil, err
		}
		if cp.StoreID != store.ID || !cp.Live(time.Now()) {
			return nil, domain.ErrInvalidCoupon
		}
		couponCode = cp.Code
	}

	link, adapter, err := s.pickLink(store.ID)
	if err != nil {
		return nil, err
	}

	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	subject := sessionID
	if in.UserID != nil {
		subject = "u" + strconv.FormatUint(uint64(*in.UserID), 10)
	}

	now := time.Now()
	var click *models.ClickRecord
	// The unique index on token is the authority; re-mint on the
	// vanishingly rare collision.
	for attempt := 0; attempt < 5; attempt++ {
		token, err := mintToken()
		if err != nil {
			return nil, err
		}
		redirectURL, err := adapter.GenerateLink(affiliate.LinkRequest{
			TargetURL:   store.WebsiteURL,
			URLTemplate: link.URLTemplate,
			PartnerID:   link.PartnerID,
			SubID:       token,
			SubjectID:   subject,
			CouponCode:  couponCode,
		})
		if err != nil {
			return nil, err
		}
		click = &models.ClickRecord{
			Token:             token,
			UserID:            in.UserID,
			SessionID:         sessionID,
			StoreID:           store.ID,
			CouponID:          in.CouponID,
			Network:           link.Network,
			RedirectURL:       redirectURL,
			Status:            domain.ClickStatusPending,
			ExpiresAt:         now.Add(s.cfg.Tracking.AttributionWindow),
			RedirectExpiresAt: now.Add(s.cfg.Tracking.RedirectTTL),
			IPAddress:         in.IP,
			UserAgent:         in.UserAgent,
		}
		collision, err := s.clickRepo.CreateUnique(click)
		if err == nil {
			break
		}
		if !collision {
			return nil, err
		}
		click = nil
	}
	if click == nil {
		return nil, fmt.Errorf("click token collision persisted after retries")
	}

	if err := s.cache.Set(ctx, click.Token, &cache.CachedClick{
		ClickID:           click.ID,
		RedirectURL:       click.RedirectURL,
		RedirectExpiresAt: click.RedirectExpiresAt,
	}, s.cfg.Tracking.RedirectTTL); err != nil {
		s.log.Warn("click cache warm failed", zap.Error(err))
	}

	// Aggregate counter is eventually consistent; never fail the click.
	if err := s.storeRepo.IncrementClicks(store.ID); err != nil {
		s.log.Warn("store click counter", zap.Uint("store_id", store.ID), zap.Error(err))
	}

	metrics.ClicksIssued.Inc()
	return &IssueResult{
		Token:       click.Token,
		RedirectURL: click.RedirectURL,
		SessionID:   sessionID,
		ExpiresAt:   click.ExpiresAt,
	}, nil
}

// pickLink selects the active link with the highest commission rate, ties
// broken by list order, skipping networks with no registered adapter.
func (s *ClickService) pickLink(storeID uint) (*models.AffiliateLink, affiliate.Adapter, error) {
	links, err := s.storeRepo.ActiveLinks(storeID)
	if err != nil {
		return nil, nil, err
	}
	var (
		best        *models.AffiliateLink
		bestAdapter affiliate.Adapter
	)
	for i := range links {
		adapter, err := s.registry.Get(links[i].Network)
		if err != nil {
			s.log.Warn("affiliate link for unregistered network",
				zap.String("network", links[i].Network), zap.Uint("link_id", links[i].ID))
			continue
		}
		if best == nil || links[i].CommissionRate > best.CommissionRate {
			best = &links[i]
			bestAdapter = adapter
		}
	}
	if best == nil {
		return nil, nil, domain.ErrNoAffiliateLink
	}
	return best, bestAdapter, nil
}

// mintToken returns a cryptographically random 256-bit hex token.
func mintToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
