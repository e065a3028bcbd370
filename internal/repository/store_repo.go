package repository

import (
	"paisaback/internal/models"

	"gorm.io/gorm"
)

type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) GetByID(id uint) (*models.Store, error) {
	var s models.Store
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepository) GetCoupon(id uint) (*models.Coupon, error) {
	var cp models.Coupon
	if err := r.db.First(&cp, id).Error; err != nil {
		return nil, err
	}
	return &cp, nil
}

// ActiveLinks returns the store's active affiliate links in configured
// list order, which is the commission tie-breaker.
func (r *StoreRepository) ActiveLinks(storeID uint) ([]models.AffiliateLink, error) {
	var links []models.AffiliateLink
	err := r.db.Where("store_id = ? AND is_active = ?", storeID, true).
		Order("position ASC, id ASC").
		Find(&links).Error
	return links, err
}

// Aggregate counters are best-effort, eventually consistent; callers log
// and ignore failures.

func (r *StoreRepository) IncrementClicks(storeID uint) error {
	return r.db.Model(&models.Store{}).
		Where("id = ?", storeID).
		UpdateColumn("click_count", gorm.Expr("click_count + 1")).Error
}

func (r *StoreRepository) RecordConversion(storeID uint, revenuePaise int64) error {
	return r.db.Model(&models.Store{}).
		Where("id = ?", storeID).
		UpdateColumns(map[string]interface{}{
			"conversion_count":    gorm.Expr("conversion_count + 1"),
			"total_revenue_paise": gorm.Expr("total_revenue_paise + ?", revenuePaise),
		}).Error
}
