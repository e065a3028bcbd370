package repository

import (
	"paisaback/internal/models"

	"gorm.io/gorm"
)

// WalletRepository mutates the per-user cashback buckets. Every mutation
// is a single increment-by-delta UPDATE so concurrent reconciliations and
// approvals cannot lose updates.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	w, err := r.GetByUserID(userID)
	if err == nil {
		return w, nil
	}
	w = &models.Wallet{UserID: userID, Currency: "INR"}
	if err := r.db.Create(w).Error; err != nil {
		if isDuplicateErr(err) {
			return r.GetByUserID(userID)
		}
		return nil, err
	}
	return w, nil
}

// AddPending credits (or debits, negative delta) the pending bucket.
func (r *WalletRepository) AddPending(tx *gorm.DB, userID uint, deltaPaise int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		UpdateColumn("pending_paise", gorm.Expr("pending_paise + ?", deltaPaise)).Error
}

// MovePendingToAvailable releases a confirmed amount in one statement so
// the two buckets change together.
func (r *WalletRepository) MovePendingToAvailable(tx *gorm.DB, userID uint, amountPaise int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"pending_paise":   gorm.Expr("pending_paise - ?", amountPaise),
			"available_paise": gorm.Expr("available_paise + ?", amountPaise),
		}).Error
}

// RemovePending drops a rejected or cancelled amount from pending.
func (r *WalletRepository) RemovePending(tx *gorm.DB, userID uint, amountPaise int64) error {
	return r.AddPending(tx, userID, -amountPaise)
}
