package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"paisaback/config"
	"paisaback/internal/cache"
	"paisaback/internal/database"
	"paisaback/internal/models"
	"paisaback/internal/repository"
	"paisaback/pkg/affiliate"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testWebhookSecret = "test-webhook-secret"

// testEnv wires the full service stack against an in-memory database and
// the in-process click cache.
type testEnv struct {
	db       *gorm.DB
	cfg      *config.Config
	registry *affiliate.Registry
	cache    *cache.MemoryCache

	userRepo     *repository.UserRepository
	storeRepo    *repository.StoreRepository
	clickRepo    *repository.ClickRepository
	txRepo       *repository.TransactionRepository
	walletRepo   *repository.WalletRepository
	referralRepo *repository.ReferralRepository
	eventRepo    *repository.WebhookEventRepository

	clickSvc      *ClickService
	redirectSvc   *RedirectService
	conversionSvc *ConversionService
	ledgerSvc     *LedgerService
	referralSvc   *ReferralService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "paisaback"},
		Tracking: config.TrackingConfig{
			AttributionWindow: 30 * 24 * time.Hour,
			RedirectTTL:       24 * time.Hour,
			CookieName:        "pb_click",
			CookieMaxAge:      30 * 24 * time.Hour,
			ErrorRedirectURL:  "https://paisaback.in/link-error",
		},
		Referral: config.ReferralConfig{FirstPurchaseRewardPaise: 10000},
	}

	registry := affiliate.NewRegistry(
		affiliate.NewAdmitadAdapter(testWebhookSecret),
		affiliate.NewCustomAdapter(testWebhookSecret),
	)
	clickCache := cache.NewMemoryCache()
	log := zap.NewNop()

	env := &testEnv{
		db:       db,
		cfg:      cfg,
		registry: registry,
		cache:    clickCache,

		userRepo:     repository.NewUserRepository(db),
		storeRepo:    repository.NewStoreRepository(db),
		clickRepo:    repository.NewClickRepository(db),
		txRepo:       repository.NewTransactionRepository(db),
		walletRepo:   repository.NewWalletRepository(db),
		referralRepo: repository.NewReferralRepository(db),
		eventRepo:    repository.NewWebhookEventRepository(db),
	}
	env.clickSvc = NewClickService(cfg, registry, env.storeRepo, env.clickRepo, clickCache, log)
	env.redirectSvc = NewRedirectService(env.clickRepo, clickCache, log)
	env.referralSvc = NewReferralService(cfg, db, env.userRepo, env.txRepo, env.referralRepo, env.walletRepo, log)
	env.conversionSvc = NewConversionService(cfg, registry, db, env.clickRepo, env.txRepo, env.walletRepo, env.storeRepo, env.eventRepo, env.referralSvc, log)
	env.ledgerSvc = NewLedgerService(db, env.txRepo, env.walletRepo, env.referralSvc, log)
	return env
}

func (env *testEnv) createUser(t *testing.T, email string, referredBy *uint) *models.User {
	t.Helper()
	u := &models.User{Email: email, Role: "SHOPPER", ReferredBy: referredBy}
	require.NoError(t, env.userRepo.Create(u))
	return u
}

// createStore seeds an active store with a single admitad link at the
// given commission rate.
func (env *testEnv) createStore(t *testing.T, slug, cashbackType string, value float64, capPaise int64) *models.Store {
	t.Helper()
	s := &models.Store{
		Name:             slug,
		Slug:             slug,
		WebsiteURL:       "https://" + slug + ".example.com",
		IsActive:         true,
		CashbackType:     cashbackType,
		CashbackValue:    value,
		CashbackCapPaise: capPaise,
	}
	require.NoError(t, env.db.Create(s).Error)
	require.NoError(t, env.db.Create(&models.AffiliateLink{
		StoreID:        s.ID,
		Network:        "admitad",
		PartnerID:      "p100",
		IsActive:       true,
		CommissionRate: 5,
	}).Error)
	return s
}

func (env *testEnv) issueClick(t *testing.T, storeID uint, userID *uint) *IssueResult {
	t.Helper()
	res, err := env.clickSvc.Issue(context.Background(), IssueInput{StoreID: storeID, UserID: userID})
	require.NoError(t, err)
	return res
}

func (env *testEnv) wallet(t *testing.T, userID uint) *models.Wallet {
	t.Helper()
	w, err := env.walletRepo.GetOrCreate(userID)
	require.NoError(t, err)
	return w
}

func (env *testEnv) clickByToken(t *testing.T, token string) *models.ClickRecord {
	t.Helper()
	c, err := env.clickRepo.GetByToken(token)
	require.NoError(t, err)
	return c
}

func (env *testEnv) countTransactions(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.Transaction{}).Count(&n).Error)
	return n
}

func (env *testEnv) lastWebhookEvent(t *testing.T) *models.WebhookEvent {
	t.Helper()
	var e models.WebhookEvent
	require.NoError(t, env.db.Order("id DESC").First(&e).Error)
	return &e
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
