package service

import (
	"context"
	"errors"
	"time"

	"paisaback/config"
	"paisaback/internal/domain"
	"paisaback/internal/metrics"
	"paisaback/internal/models"
	"paisaback/internal/repository"
	"paisaback/pkg/affiliate"
	"paisaback/pkg/cashback"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errAnonymousClick marks conversions on clicks with no user to credit;
// they are flagged for manual reconciliation instead of creating money.
var errAnonymousClick = errors.New("conversion on anonymous click")

// ConversionService normalizes inbound conversion reports into exactly one
// Transaction per (network, orderId) and applies the wallet credit. The
// storage-level unique index is the authoritative dedup guard; every
// pre-check here is an optimization.
type ConversionService struct {
	cfg         *config.Config
	registry    *affiliate.Registry
	db          *gorm.DB
	clickRepo   *repository.ClickRepository
	txRepo      *repository.TransactionRepository
	walletRepo  *repository.WalletRepository
	storeRepo   *repository.StoreRepository
	eventRepo   *repository.WebhookEventRepository
	referralSvc *ReferralService
	log         *zap.Logger
}

func NewConversionService(
	cfg *config.Config,
	registry *affiliate.Registry,
	db *gorm.DB,
	clickRepo *repository.ClickRepository,
	txRepo *repository.TransactionRepository,
	walletRepo *repository.WalletRepository,
	storeRepo *repository.StoreRepository,
	eventRepo *repository.WebhookEventRepository,
	referralSvc *ReferralService,
	log *zap.Logger,
) *ConversionService {
	return &ConversionService{
		cfg:         cfg,
		registry:    registry,
		db:          db,
		clickRepo:   clickRepo,
		txRepo:      txRepo,
		walletRepo:  walletRepo,
		storeRepo:   storeRepo,
		eventRepo:   eventRepo,
		referralSvc: referralSvc,
		log:         log,
	}
}

// HandleWebhook processes one inbound affiliate webhook. It returns an
// error only on unexpected internal failure; every benign outcome
// (bad signature, unknown click, replayed order) is absorbed so the
// handler can acknowledge with 200 and stop network-side retries.
func (s *ConversionService) HandleWebhook(ctx context.Context, network string, payload []byte, signature, ip string) error {
	start := time.Now()
	defer func() {
		metrics.WebhookDuration.WithLabelValues(network).Observe(time.Since(start).Seconds())
	}()

	event := &models.WebhookEvent{
		EventID:   uuid.NewString(),
		Network:   network,
		Payload:   string(payload),
		Signature: signature,
		IP:        ip,
	}
	if err := s.eventRepo.Create(event); err != nil {
		s.log.Warn("webhook event audit write", zap.Error(err))
	}

	adapter, err := s.registry.Get(network)
	if err != nil {
		s.flag(event, network, "unsupported network")
		return nil
	}
	if !adapter.ValidateSignature(payload, signature) {
		// No detail leaks to the caller; the flagged event is the trail.
		s.flag(event, network, "invalid signature")
		return nil
	}

	ev, err := adapter.Normalize(payload)
	if err != nil {
		s.flag(event, network, "unparseable payload")
		return nil
	}
	if ev == nil {
		metrics.WebhooksReceived.WithLabelValues(network, "noop").Inc()
		return nil
	}

	tx, created, err := s.reconcile(ctx, network, ev)
	switch {
	case err == nil:
		if event.ID != 0 && tx != nil {
			if lerr := s.eventRepo.LinkTransaction(event.ID, tx.ID); lerr != nil {
				s.log.Warn("webhook event link", zap.Error(lerr))
			}
		}
		outcome := "duplicate"
		if created {
			outcome = "converted"
		}
		metrics.WebhooksReceived.WithLabelValues(network, outcome).Inc()
		return nil
	case errors.Is(err, domain.ErrClickNotFound):
		s.flag(event, network, "no click record for order")
		return nil
	case errors.Is(err, domain.ErrExpired):
		s.flag(event, network, "conversion past attribution window")
		return nil
	case errors.Is(err, errAnonymousClick):
		s.flag(event, network, "anonymous click, no wallet to credit")
		return nil
	default:
		return err
	}
}

// ReportConversion is the direct (non-webhook) entry point used by the
// admin reconciliation endpoint.
func (s *ConversionService) ReportConversion(ctx context.Context, clickToken, orderID string, orderAmountPaise int64) (*models.Transaction, error) {
	click, err := s.clickRepo.GetByToken(clickToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClickNotFound
		}
		return nil, err
	}
	tx, _, err := s.reconcile(ctx, click.Network, &affiliate.ConversionEvent{
		OrderID:          orderID,
		OrderAmountPaise: orderAmountPaise,
		Status:           affiliate.EventPending,
		Timestamp:        time.Now(),
		TrackingID:       clickToken,
	})
	return tx, err
}

// reconcile runs the attribution pipeline: locate click, dedup, compute amounts,
// create the pending transaction and credit wallet.pending atomically.
func (s *ConversionService) reconcile(ctx context.Context, network string, ev *affiliate.ConversionEvent) (*models.Transaction, bool, error) {
	// Existence pre-check; the unique index still backs this.
	if existing, err := s.txRepo.GetByNetworkOrder(network, ev.OrderID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	click, err := s.locateClick(network, ev)
	if err != nil {
		return nil, false, err
	}

	now := time.Now()
	if now.After(click.ExpiresAt) {
		if err := s.clickRepo.MarkExpired(click.ID); err != nil {
			s.log.Warn("mark click expired", zap.Error(err))
		}
		return nil, false, domain.ErrExpired
	}

	store, err := s.storeRepo.GetByID(click.StoreID)
	if err != nil {
		return nil, false, err
	}
	cashbackPaise := cashback.Compute(ev.OrderAmountPaise, store.CashbackType, store.CashbackValue, store.CashbackCapPaise)
	commissionRate, commissionPaise := s.commission(click, ev)

	if click.UserID == nil {
		// The purchase happened; record it on the click so the order is
		// not silently lost, but no transaction or wallet write.
		if click.Status == domain.ClickStatusPending {
			if err := s.clickRepo.MarkConverted(nil, click.ID, ev.OrderID, ev.OrderAmountPaise, commissionPaise, now); err != nil {
				s.log.Warn("mark anonymous click converted", zap.Error(err))
			}
		}
		return nil, false, errAnonymousClick
	}
	userID := *click.UserID

	if _, err := s.walletRepo.GetOrCreate(userID); err != nil {
		return nil, false, err
	}

	t := &models.Transaction{
		UserID:                userID,
		ClickID:               click.ID,
		StoreID:               click.StoreID,
		Network:               network,
		OrderID:               ev.OrderID,
		OrderAmountPaise:      ev.OrderAmountPaise,
		CashbackPaise:         cashbackPaise,
		CommissionRate:        commissionRate,
		CommissionEarnedPaise: commissionPaise,
		Status:                domain.TxStatusPending,
	}

	var duplicate bool
	err = s.db.Transaction(func(dbtx *gorm.DB) error {
		if err := s.txRepo.Create(dbtx, t); err != nil {
			if repository.IsDuplicate(err) {
				duplicate = true
			}
			return err
		}
		if click.Status == domain.ClickStatusPending {
			if err := s.clickRepo.MarkConverted(dbtx, click.ID, ev.OrderID, ev.OrderAmountPaise, commissionPaise, now); err != nil {
				return err
			}
		}
		return s.walletRepo.AddPending(dbtx, userID, cashbackPaise)
	})
	if err != nil {
		if duplicate {
			// Lost the insert race to a concurrent retry; the winner's row
			// is the transaction, with zero side effects from this call.
			existing, gerr := s.txRepo.GetByNetworkOrder(network, ev.OrderID)
			if gerr != nil {
				return nil, false, gerr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	if err := s.storeRepo.RecordConversion(click.StoreID, ev.OrderAmountPaise); err != nil {
		s.log.Warn("store conversion stats", zap.Uint("store_id", click.StoreID), zap.Error(err))
	}

	// Cascade check; a pending transaction never rewards, the approval
	// path re-runs this with the approved transaction.
	if err := s.referralSvc.MaybeReward(ctx, t); err != nil {
		s.log.Warn("referral cascade check", zap.Uint("tx_id", t.ID), zap.Error(err))
	}

	s.log.Info("conversion reconciled",
		zap.String("network", network),
		zap.String("order_id", ev.OrderID),
		zap.Uint("user_id", userID),
		zap.Int64("cashback_paise", cashbackPaise))
	return t, true, nil
}

func (s *ConversionService) locateClick(network string, ev *affiliate.ConversionEvent) (*models.ClickRecord, error) {
	click, err := s.clickRepo.GetByNetworkOrder(network, ev.OrderID)
	if err == nil {
		return click, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if ev.TrackingID == "" {
		return nil, domain.ErrClickNotFound
	}
	click, err = s.clickRepo.GetByToken(ev.TrackingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClickNotFound
		}
		return nil, err
	}
	return click, nil
}

// commission prefers the payout the network itself reported; otherwise it
// is computed from the configured link rate.
func (s *ConversionService) commission(click *models.ClickRecord, ev *affiliate.ConversionEvent) (float64, int64) {
	rate := 0.0
	links, err := s.storeRepo.ActiveLinks(click.StoreID)
	if err == nil {
		for _, l := range links {
			if l.Network == click.Network {
				rate = l.CommissionRate
				break
			}
		}
	}
	if ev.CommissionPaise > 0 {
		return rate, ev.CommissionPaise
	}
	return rate, cashback.Commission(ev.OrderAmountPaise, rate)
}

func (s *ConversionService) flag(event *models.WebhookEvent, network, reason string) {
	metrics.WebhooksReceived.WithLabelValues(network, "flagged").Inc()
	s.log.Warn("webhook flagged", zap.String("network", network), zap.String("reason", reason))
	if event.ID == 0 {
		return
	}
	if err := s.eventRepo.Flag(event.ID, reason); err != nil {
		s.log.Warn("webhook event flag write", zap.Error(err))
	}
}
