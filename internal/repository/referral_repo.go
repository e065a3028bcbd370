package repository

import (
	"time"

	"paisaback/internal/domain"
	"paisaback/internal/models"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// CreateReward inserts a reward; exists reports that the unique
// (referrer, referred, type) row was already there, which is how retried
// approvals stay single-credit.
func (r *ReferralRepository) CreateReward(tx *gorm.DB, reward *models.ReferralReward) (exists bool, err error) {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Create(reward).Error; err != nil {
		if isDuplicateErr(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

func (r *ReferralRepository) GetReward(id uint) (*models.ReferralReward, error) {
	var rw models.ReferralReward
	if err := r.db.First(&rw, id).Error; err != nil {
		return nil, err
	}
	return &rw, nil
}

// ClaimTransition mirrors the transaction state machine for rewards.
func (r *ReferralRepository) ClaimTransition(tx *gorm.DB, id uint, newStatus string, at time.Time) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&models.ReferralReward{}).
		Where("id = ? AND status = ?", id, domain.RewardStatusPending).
		Updates(map[string]interface{}{
			"status":       newStatus,
			"processed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ReferralRepository) ListByReferrer(referrerID uint, limit, offset int) ([]models.ReferralReward, error) {
	var list []models.ReferralReward
	err := r.db.Where("referrer_id = ?", referrerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
