package service

import (
	"context"
	"errors"
	"time"

	"paisaback/internal/domain"
	"paisaback/internal/metrics"
	"paisaback/internal/models"
	"paisaback/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LedgerService is the transaction state machine. PENDING is the only
// non-terminal state; each transition applies exactly one wallet movement
// inside the same storage transaction that claims the status flip, so a
// failed transition leaves every balance untouched.
type LedgerService struct {
	db          *gorm.DB
	txRepo      *repository.TransactionRepository
	walletRepo  *repository.WalletRepository
	referralSvc *ReferralService
	log         *zap.Logger
}

func NewLedgerService(
	db *gorm.DB,
	txRepo *repository.TransactionRepository,
	walletRepo *repository.WalletRepository,
	referralSvc *ReferralService,
	log *zap.Logger,
) *LedgerService {
	return &LedgerService{
		db:          db,
		txRepo:      txRepo,
		walletRepo:  walletRepo,
		referralSvc: referralSvc,
		log:         log,
	}
}

// Transition applies an admin-triggered status change.
func (s *LedgerService) Transition(ctx context.Context, txID uint, newStatus, adminNote, rejectionReason string) (*models.Transaction, error) {
	switch newStatus {
	case domain.TxStatusApproved, domain.TxStatusCancelled:
	case domain.TxStatusRejected:
		if rejectionReason == "" {
			return nil, domain.ErrValidation
		}
	default:
		return nil, domain.ErrValidation
	}

	t, err := s.txRepo.GetByID(txID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if t.Terminal() {
		return nil, domain.ErrStateConflict
	}

	now := time.Now()
	err = s.db.Transaction(func(dbtx *gorm.DB) error {
		claimed, err := s.txRepo.ClaimTransition(dbtx, t.ID, newStatus, adminNote, rejectionReason, now)
		if err != nil {
			return err
		}
		if !claimed {
			// Lost to a concurrent admin call; nothing was applied here.
			return domain.ErrStateConflict
		}
		switch newStatus {
		case domain.TxStatusApproved:
			return s.walletRepo.MovePendingToAvailable(dbtx, t.UserID, t.CashbackPaise)
		default: // REJECTED, CANCELLED
			return s.walletRepo.RemovePending(dbtx, t.UserID, t.CashbackPaise)
		}
	})
	if err != nil {
		return nil, err
	}

	t.Status = newStatus
	t.AdminNote = adminNote
	t.RejectionReason = rejectionReason
	t.ProcessedAt = &now

	if newStatus == domain.TxStatusApproved {
		if err := s.referralSvc.MaybeReward(ctx, t); err != nil {
			s.log.Warn("referral cascade", zap.Uint("tx_id", t.ID), zap.Error(err))
		}
	}

	metrics.Transitions.WithLabelValues(newStatus).Inc()
	s.log.Info("transaction transitioned",
		zap.Uint("tx_id", t.ID),
		zap.String("status", newStatus),
		zap.Int64("cashback_paise", t.CashbackPaise))
	return t, nil
}
