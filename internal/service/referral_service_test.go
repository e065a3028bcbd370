package service

import (
	"context"
	"testing"

	"paisaback/internal/domain"
	"paisaback/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstApprovalRewardsReferrer(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "referrer@example.com", nil)
	referred := env.createUser(t, "referred@example.com", &referrer.ID)

	tx := env.seedPendingTx(t, referred.ID, "O1", 30000)
	_, err := env.ledgerSvc.Transition(context.Background(), tx.ID, domain.TxStatusApproved, "", "")
	require.NoError(t, err)

	reward, err := env.referralRepo.GetReward(1)
	require.NoError(t, err)
	assert.Equal(t, referrer.ID, reward.ReferrerID)
	assert.Equal(t, referred.ID, reward.ReferredUserID)
	assert.Equal(t, domain.RewardTypeFirstPurchase, reward.RewardType)
	assert.Equal(t, domain.RewardStatusPending, reward.Status)
	assert.Equal(t, int64(10000), reward.RewardPaise)
	assert.Equal(t, tx.ID, reward.TransactionID)

	w := env.wallet(t, referrer.ID)
	assert.Equal(t, int64(10000), w.PendingPaise)

	list, err := env.referralSvc.ListRewards(referrer.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSecondApprovalDoesNotRewardAgain(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "referrer@example.com", nil)
	referred := env.createUser(t, "referred@example.com", &referrer.ID)

	first := env.seedPendingTx(t, referred.ID, "O1", 1000)
	second := env.seedPendingTx(t, referred.ID, "O2", 2000)

	_, err := env.ledgerSvc.Transition(context.Background(), first.ID, domain.TxStatusApproved, "", "")
	require.NoError(t, err)
	_, err = env.ledgerSvc.Transition(context.Background(), second.ID, domain.TxStatusApproved, "", "")
	require.NoError(t, err)

	var rewards int64
	require.NoError(t, env.db.Model(&models.ReferralReward{}).Count(&rewards).Error)
	assert.Equal(t, int64(1), rewards)

	w := env.wallet(t, referrer.ID)
	assert.Equal(t, int64(10000), w.PendingPaise)
}

func TestRetriedRewardIsSingleCredit(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "referrer@example.com", nil)
	referred := env.createUser(t, "referred@example.com", &referrer.ID)

	tx := env.seedPendingTx(t, referred.ID, "O1", 1000)
	tx.Status = domain.TxStatusApproved

	// MaybeReward must be safe to call twice with the same approved
	// transaction; the unique (referrer, referred, type) row absorbs the
	// retry.
	require.NoError(t, env.referralSvc.MaybeReward(context.Background(), tx))
	require.NoError(t, env.referralSvc.MaybeReward(context.Background(), tx))

	w := env.wallet(t, referrer.ID)
	assert.Equal(t, int64(10000), w.PendingPaise)
}

func TestUnreferredUserNeverRewards(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "loner@example.com", nil)

	tx := env.seedPendingTx(t, user.ID, "O1", 1000)
	_, err := env.ledgerSvc.Transition(context.Background(), tx.ID, domain.TxStatusApproved, "", "")
	require.NoError(t, err)

	var rewards int64
	require.NoError(t, env.db.Model(&models.ReferralReward{}).Count(&rewards).Error)
	assert.Zero(t, rewards)
}

func TestPendingTransactionNeverRewards(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "referrer@example.com", nil)
	referred := env.createUser(t, "referred@example.com", &referrer.ID)

	tx := env.seedPendingTx(t, referred.ID, "O1", 1000)
	require.NoError(t, env.referralSvc.MaybeReward(context.Background(), tx))

	var rewards int64
	require.NoError(t, env.db.Model(&models.ReferralReward{}).Count(&rewards).Error)
	assert.Zero(t, rewards)
}

func TestRewardTransitionMirrorsLedger(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "referrer@example.com", nil)
	referred := env.createUser(t, "referred@example.com", &referrer.ID)

	tx := env.seedPendingTx(t, referred.ID, "O1", 1000)
	_, err := env.ledgerSvc.Transition(context.Background(), tx.ID, domain.TxStatusApproved, "", "")
	require.NoError(t, err)

	reward, err := env.referralSvc.TransitionReward(context.Background(), 1, domain.RewardStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.RewardStatusApproved, reward.Status)
	assert.NotNil(t, reward.ProcessedAt)

	w := env.wallet(t, referrer.ID)
	assert.Zero(t, w.PendingPaise)
	assert.Equal(t, int64(10000), w.AvailablePaise)

	_, err = env.referralSvc.TransitionReward(context.Background(), 1, domain.RewardStatusRejected)
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	_, err = env.referralSvc.TransitionReward(context.Background(), 999, domain.RewardStatusApproved)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.referralSvc.TransitionReward(context.Background(), 1, "PAID")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRewardRejectionRemovesPending(t *testing.T) {
	env := newTestEnv(t)
	referrer := env.createUser(t, "referrer@example.com", nil)
	referred := env.createUser(t, "referred@example.com", &referrer.ID)

	tx := env.seedPendingTx(t, referred.ID, "O1", 1000)
	_, err := env.ledgerSvc.Transition(context.Background(), tx.ID, domain.TxStatusApproved, "", "")
	require.NoError(t, err)

	_, err = env.referralSvc.TransitionReward(context.Background(), 1, domain.RewardStatusRejected)
	require.NoError(t, err)

	w := env.wallet(t, referrer.ID)
	assert.Zero(t, w.PendingPaise)
	assert.Zero(t, w.AvailablePaise)
}
