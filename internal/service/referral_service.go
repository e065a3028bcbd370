package service

import (
	"context"
	"errors"
	"time"

	"paisaback/config"
	"paisaback/internal/domain"
	"paisaback/internal/models"
	"paisaback/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReferralService credits a referrer exactly once, on the referred user's
// first approved transaction. The unique (referrer, referred, type) index
// makes the check safe against retried approval calls.
type ReferralService struct {
	cfg          *config.Config
	db           *gorm.DB
	userRepo     *repository.UserRepository
	txRepo       *repository.TransactionRepository
	referralRepo *repository.ReferralRepository
	walletRepo   *repository.WalletRepository
	log          *zap.Logger
}

func NewReferralService(
	cfg *config.Config,
	db *gorm.DB,
	userRepo *repository.UserRepository,
	txRepo *repository.TransactionRepository,
	referralRepo *repository.ReferralRepository,
	walletRepo *repository.WalletRepository,
	log *zap.Logger,
) *ReferralService {
	return &ReferralService{
		cfg:          cfg,
		db:           db,
		userRepo:     userRepo,
		txRepo:       txRepo,
		referralRepo: referralRepo,
		walletRepo:   walletRepo,
		log:          log,
	}
}

// MaybeReward creates the first-purchase reward when t is the referred
// user's first approved transaction. A no-op for pending transactions,
// unreferred users and already-rewarded pairs.
func (s *ReferralService) MaybeReward(_ context.Context, t *models.Transaction) error {
	if t.Status != domain.TxStatusApproved {
		return nil
	}
	prior, err := s.txRepo.CountApprovedByUser(t.UserID, t.ID)
	if err != nil {
		return err
	}
	if prior > 0 {
		return nil
	}
	user, err := s.userRepo.GetByID(t.UserID)
	if err != nil {
		return err
	}
	if user.ReferredBy == nil {
		return nil
	}
	referrerID := *user.ReferredBy

	if _, err := s.walletRepo.GetOrCreate(referrerID); err != nil {
		return err
	}

	reward := &models.ReferralReward{
		ReferrerID:     referrerID,
		ReferredUserID: t.UserID,
		RewardType:     domain.RewardTypeFirstPurchase,
		RewardPaise:    s.cfg.Referral.FirstPurchaseRewardPaise,
		TransactionID:  t.ID,
		Status:         domain.RewardStatusPending,
	}
	return s.db.Transaction(func(dbtx *gorm.DB) error {
		exists, err := s.referralRepo.CreateReward(dbtx, reward)
		if err != nil {
			return err
		}
		if exists {
			// Retried approval; the reward (and its wallet credit) already
			// happened.
			return nil
		}
		if err := s.walletRepo.AddPending(dbtx, referrerID, reward.RewardPaise); err != nil {
			return err
		}
		s.log.Info("referral reward created",
			zap.Uint("referrer_id", referrerID),
			zap.Uint("referred_user_id", t.UserID),
			zap.Int64("reward_paise", reward.RewardPaise))
		return nil
	})
}

func (s *ReferralService) ListRewards(referrerID uint, limit, offset int) ([]models.ReferralReward, error) {
	return s.referralRepo.ListByReferrer(referrerID, limit, offset)
}

// TransitionReward applies the admin-approved reward transition, mirroring
// the cashback ledger.
func (s *ReferralService) TransitionReward(_ context.Context, rewardID uint, newStatus string) (*models.ReferralReward, error) {
	switch newStatus {
	case domain.RewardStatusApproved, domain.RewardStatusRejected:
	default:
		return nil, domain.ErrValidation
	}

	reward, err := s.referralRepo.GetReward(rewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if reward.Status != domain.RewardStatusPending {
		return nil, domain.ErrStateConflict
	}

	now := time.Now()
	err = s.db.Transaction(func(dbtx *gorm.DB) error {
		claimed, err := s.referralRepo.ClaimTransition(dbtx, reward.ID, newStatus, now)
		if err != nil {
			return err
		}
		if !claimed {
			return domain.ErrStateConflict
		}
		if newStatus == domain.RewardStatusApproved {
			return s.walletRepo.MovePendingToAvailable(dbtx, reward.ReferrerID, reward.RewardPaise)
		}
		return s.walletRepo.RemovePending(dbtx, reward.ReferrerID, reward.RewardPaise)
	})
	if err != nil {
		return nil, err
	}

	reward.Status = newStatus
	reward.ProcessedAt = &now
	return reward, nil
}
