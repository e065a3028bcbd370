package repository

import (
	"time"

	"paisaback/internal/domain"
	"paisaback/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(tx *gorm.DB, t *models.Transaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(t).Error
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByNetworkOrder(network, orderID string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Where("network = ? AND order_id = ?", network, orderID).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ClaimTransition flips a pending transaction into a terminal status. The
// conditional WHERE makes concurrent admin calls race-safe: exactly one
// caller observes rowsAffected == 1 and applies the wallet movement.
func (r *TransactionRepository) ClaimTransition(tx *gorm.DB, id uint, newStatus, adminNote, rejectionReason string, at time.Time) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TxStatusPending).
		Updates(map[string]interface{}{
			"status":           newStatus,
			"admin_note":       adminNote,
			"rejection_reason": rejectionReason,
			"processed_at":     at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountApprovedByUser counts a user's approved transactions, excluding one
// id (the transaction currently being approved).
func (r *TransactionRepository) CountApprovedByUser(userID, excludeID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Transaction{}).
		Where("user_id = ? AND status = ? AND id <> ?", userID, domain.TxStatusApproved, excludeID).
		Count(&n).Error
	return n, err
}

func (r *TransactionRepository) ListByUser(userID uint, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *TransactionRepository) List(status string, limit, offset int) ([]models.Transaction, error) {
	q := r.db.Order("created_at DESC").Limit(limit).Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []models.Transaction
	err := q.Find(&list).Error
	return list, err
}
