package router

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"paisaback/config"
	"paisaback/internal/cache"
	"paisaback/internal/database"
	"paisaback/internal/domain"
	"paisaback/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const webhookSecret = "e2e-webhook-secret"

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "e2e-secret", Expiry: time.Hour, Issuer: "paisaback"},
		Tracking: config.TrackingConfig{
			AttributionWindow: 30 * 24 * time.Hour,
			RedirectTTL:       24 * time.Hour,
			CookieName:        "pb_click",
			CookieMaxAge:      30 * 24 * time.Hour,
			ErrorRedirectURL:  "https://paisaback.in/link-error",
		},
		Referral: config.ReferralConfig{FirstPurchaseRewardPaise: 10000},
		Networks: config.NetworksConfig{
			Admitad: config.NetworkConfig{Secret: webhookSecret},
		},
	}
	database.SeedAdmin(db, &config.AdminConfig{Email: "admin@example.com", Password: "admin-pass"})

	return Setup(cfg, db, cache.NewMemoryCache(), zap.NewNop()), db
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/auth/login", "",
		[]byte(fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.Token
}

// TestClickToWalletFlow walks the whole shopper journey over HTTP: click
// issuance, redirect, the network conversion webhook, admin approval and
// the final wallet balance.
func TestClickToWalletFlow(t *testing.T) {
	r, db := setupRouter(t)

	// Shopper account and a 5% store capped at Rs 300.
	hash, err := bcrypt.GenerateFromPassword([]byte("shopper-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Email: "shopper@example.com", PasswordHash: string(hash), Role: domain.RoleShopper,
	}).Error)
	store := &models.Store{
		Name: "MegaMart", Slug: "megamart", WebsiteURL: "https://megamart.example.com",
		IsActive: true, CashbackType: domain.CashbackTypePercent, CashbackValue: 5, CashbackCapPaise: 30000,
	}
	require.NoError(t, db.Create(store).Error)
	require.NoError(t, db.Create(&models.AffiliateLink{
		StoreID: store.ID, Network: "admitad", PartnerID: "p100", IsActive: true, CommissionRate: 5,
	}).Error)

	shopperToken := login(t, r, "shopper@example.com", "shopper-pass")
	adminToken := login(t, r, "admin@example.com", "admin-pass")

	// 1. Issue a click.
	w := do(t, r, http.MethodPost, "/api/v1/clicks", shopperToken,
		[]byte(fmt.Sprintf(`{"store_id":%d}`, store.ID)), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var click struct {
		ClickToken  string `json:"click_token"`
		RedirectURL string `json:"redirect_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &click))
	require.NotEmpty(t, click.ClickToken)

	// 2. Follow the redirect.
	w = do(t, r, http.MethodGet, "/r/"+click.ClickToken, "", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, click.RedirectURL, w.Header().Get("Location"))

	// 3. The network reports an order of Rs 20,000.
	body := []byte(fmt.Sprintf(
		`{"order_id":"O123","order_sum":20000,"status":"pending","subid":%q,"action_time":%q}`,
		click.ClickToken, time.Now().Format(time.RFC3339)))
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	w = do(t, r, http.MethodPost, "/api/v1/webhooks/affiliate/admitad", "", body,
		map[string]string{"X-Admitad-Signature": hex.EncodeToString(mac.Sum(nil))})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tx models.Transaction
	require.NoError(t, db.Where("network = ? AND order_id = ?", "admitad", "O123").First(&tx).Error)
	assert.Equal(t, domain.TxStatusPending, tx.Status)
	assert.Equal(t, int64(30000), tx.CashbackPaise) // capped

	// 4. Pending balance is visible to the shopper.
	w = do(t, r, http.MethodGet, "/api/v1/me/wallet", shopperToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var wallet struct {
		PendingPaise   int64 `json:"pending_paise"`
		AvailablePaise int64 `json:"available_paise"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wallet))
	assert.Equal(t, int64(30000), wallet.PendingPaise)
	assert.Zero(t, wallet.AvailablePaise)

	// 5. Admin approves; the shopper may not.
	path := fmt.Sprintf("/api/v1/transactions/%d/status", tx.ID)
	w = do(t, r, http.MethodPut, path, shopperToken, []byte(`{"status":"APPROVED"}`), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPut, path, adminToken, []byte(`{"status":"APPROVED"}`), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 6. The cashback moved to available.
	w = do(t, r, http.MethodGet, "/api/v1/me/wallet", shopperToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wallet))
	assert.Zero(t, wallet.PendingPaise)
	assert.Equal(t, int64(30000), wallet.AvailablePaise)

	// 7. A replayed approval conflicts and changes nothing.
	w = do(t, r, http.MethodPut, path, adminToken, []byte(`{"status":"APPROVED"}`), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// 8. The shopper sees the transaction in their history.
	w = do(t, r, http.MethodGet, "/api/v1/me/transactions", shopperToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Transactions []models.Transaction `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Transactions, 1)
	assert.Equal(t, domain.TxStatusApproved, history.Transactions[0].Status)
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	r, _ := setupRouter(t)

	// Forged signature, unknown network, garbage body: all 200 so the
	// network stops retrying.
	w := do(t, r, http.MethodPost, "/api/v1/webhooks/affiliate/admitad", "",
		[]byte(`{"order_id":"X"}`), map[string]string{"X-Admitad-Signature": "forged"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/webhooks/affiliate/unknown-net", "", []byte(`{}`), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/webhooks/affiliate/admitad", "", []byte(`garbage`), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Each absorbed failure left a flagged audit row behind.
	adminToken := login(t, r, "admin@example.com", "admin-pass")
	w = do(t, r, http.MethodGet, "/api/v1/webhook-events/flagged", adminToken, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flagged struct {
		Events []models.WebhookEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flagged))
	assert.Len(t, flagged.Events, 3)
}

func TestExpiredRedirectGoesToErrorPage(t *testing.T) {
	r, db := setupRouter(t)

	now := time.Now()
	require.NoError(t, db.Create(&models.ClickRecord{
		Token:             "stale",
		StoreID:           1,
		Network:           "admitad",
		RedirectURL:       "https://ad.admitad.com/g/p100/?subid=stale",
		Status:            domain.ClickStatusPending,
		ExpiresAt:         now.Add(24 * time.Hour),
		RedirectExpiresAt: now.Add(-time.Minute),
	}).Error)

	w := do(t, r, http.MethodGet, "/r/stale", "", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://paisaback.in/link-error", w.Header().Get("Location"))

	w = do(t, r, http.MethodGet, "/r/never-issued", "", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://paisaback.in/link-error", w.Header().Get("Location"))
}

func TestAuthBoundaries(t *testing.T) {
	r, _ := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/me/wallet", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/transactions", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/auth/login", "",
		[]byte(`{"email":"admin@example.com","password":"wrong"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/healthz", "", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
