package repository

import (
	"testing"
	"time"

	"paisaback/internal/domain"
	"paisaback/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Wallet{}, &models.ClickRecord{},
		&models.Transaction{}, &models.ReferralReward{},
	))
	return db
}

func TestClickTokenUniqueness(t *testing.T) {
	db := testDB(t)
	repo := NewClickRepository(db)

	base := models.ClickRecord{
		Token:             "tok-1",
		StoreID:           1,
		Network:           "admitad",
		RedirectURL:       "https://example.com",
		Status:            domain.ClickStatusPending,
		ExpiresAt:         time.Now().Add(time.Hour),
		RedirectExpiresAt: time.Now().Add(time.Hour),
	}
	first := base
	collision, err := repo.CreateUnique(&first)
	require.NoError(t, err)
	assert.False(t, collision)

	dup := base
	collision, err = repo.CreateUnique(&dup)
	require.Error(t, err)
	assert.True(t, collision)
}

func TestTransactionNetworkOrderUniqueness(t *testing.T) {
	db := testDB(t)
	repo := NewTransactionRepository(db)

	base := models.Transaction{
		UserID: 1, ClickID: 1, StoreID: 1,
		Network: "admitad", OrderID: "O1",
		OrderAmountPaise: 1000, CashbackPaise: 50,
		Status: domain.TxStatusPending,
	}
	first := base
	require.NoError(t, repo.Create(nil, &first))

	dup := base
	err := repo.Create(nil, &dup)
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))

	// Same order id under a different network is a distinct transaction.
	other := base
	other.Network = "impact"
	require.NoError(t, repo.Create(nil, &other))
}

func TestClaimTransitionIsSingleWinner(t *testing.T) {
	db := testDB(t)
	repo := NewTransactionRepository(db)

	tx := &models.Transaction{
		UserID: 1, ClickID: 1, StoreID: 1,
		Network: "admitad", OrderID: "O1",
		Status: domain.TxStatusPending,
	}
	require.NoError(t, repo.Create(nil, tx))

	now := time.Now()
	claimed, err := repo.ClaimTransition(nil, tx.ID, domain.TxStatusApproved, "", "", now)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = repo.ClaimTransition(nil, tx.ID, domain.TxStatusRejected, "", "late", now)
	require.NoError(t, err)
	assert.False(t, claimed)

	fresh, err := repo.GetByID(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusApproved, fresh.Status)
}

func TestRewardPairUniqueness(t *testing.T) {
	db := testDB(t)
	repo := NewReferralRepository(db)

	reward := &models.ReferralReward{
		ReferrerID: 1, ReferredUserID: 2,
		RewardType: domain.RewardTypeFirstPurchase,
		RewardPaise: 10000, TransactionID: 1,
		Status: domain.RewardStatusPending,
	}
	exists, err := repo.CreateReward(nil, reward)
	require.NoError(t, err)
	assert.False(t, exists)

	retry := &models.ReferralReward{
		ReferrerID: 1, ReferredUserID: 2,
		RewardType: domain.RewardTypeFirstPurchase,
		RewardPaise: 10000, TransactionID: 1,
		Status: domain.RewardStatusPending,
	}
	exists, err = repo.CreateReward(nil, retry)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWalletGetOrCreateIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewWalletRepository(db)

	w1, err := repo.GetOrCreate(7)
	require.NoError(t, err)
	w2, err := repo.GetOrCreate(7)
	require.NoError(t, err)
	assert.Equal(t, w1.ID, w2.ID)
	assert.Equal(t, "INR", w1.Currency)

	require.NoError(t, repo.AddPending(nil, 7, 500))
	require.NoError(t, repo.MovePendingToAvailable(nil, 7, 200))

	w, err := repo.GetByUserID(7)
	require.NoError(t, err)
	assert.Equal(t, int64(300), w.PendingPaise)
	assert.Equal(t, int64(200), w.AvailablePaise)
}

func TestMarkExpiredOnlyFlipsPending(t *testing.T) {
	db := testDB(t)
	repo := NewClickRepository(db)

	click := &models.ClickRecord{
		Token: "tok-1", StoreID: 1, Network: "admitad",
		RedirectURL: "https://example.com", Status: domain.ClickStatusConverted,
		ExpiresAt: time.Now(), RedirectExpiresAt: time.Now(),
	}
	require.NoError(t, repo.Create(click))

	require.NoError(t, repo.MarkExpired(click.ID))
	fresh, err := repo.GetByToken("tok-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ClickStatusConverted, fresh.Status)
}
