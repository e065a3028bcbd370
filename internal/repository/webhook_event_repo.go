package repository

import (
	"paisaback/internal/models"

	"gorm.io/gorm"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Create(e *models.WebhookEvent) error {
	return r.db.Create(e).Error
}

func (r *WebhookEventRepository) Flag(id uint, reason string) error {
	return r.db.Model(&models.WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"flagged": true, "flag_reason": reason}).Error
}

func (r *WebhookEventRepository) LinkTransaction(id, transactionID uint) error {
	return r.db.Model(&models.WebhookEvent{}).
		Where("id = ?", id).
		Update("transaction_id", transactionID).Error
}

func (r *WebhookEventRepository) ListFlagged(limit, offset int) ([]models.WebhookEvent, error) {
	var list []models.WebhookEvent
	err := r.db.Where("flagged = ?", true).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
