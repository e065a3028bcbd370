package repository

import (
	"time"

	"paisaback/internal/domain"
	"paisaback/internal/models"

	"gorm.io/gorm"
)

type ClickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) *ClickRepository {
	return &ClickRepository{db: db}
}

func (r *ClickRepository) Create(c *models.ClickRecord) error {
	return r.db.Create(c).Error
}

// CreateUnique inserts the click, reporting token collisions distinctly so
// the issuer can re-mint. The unique index on token is the authority.
func (r *ClickRepository) CreateUnique(c *models.ClickRecord) (collision bool, err error) {
	if err := r.db.Create(c).Error; err != nil {
		if isDuplicateErr(err) {
			return true, err
		}
		return false, err
	}
	return false, nil
}

func (r *ClickRepository) GetByToken(token string) (*models.ClickRecord, error) {
	var c models.ClickRecord
	if err := r.db.Where("token = ?", token).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByNetworkOrder finds a click already linked to a network order, for
// webhook retries that arrive after the first reconciliation.
func (r *ClickRepository) GetByNetworkOrder(network, orderID string) (*models.ClickRecord, error) {
	var c models.ClickRecord
	err := r.db.Where("network = ? AND order_id = ?", network, orderID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkExpired flips a still-pending click to EXPIRED. A no-op when the
// click converted in the meantime.
func (r *ClickRepository) MarkExpired(id uint) error {
	return r.db.Model(&models.ClickRecord{}).
		Where("id = ? AND status = ?", id, domain.ClickStatusPending).
		Update("status", domain.ClickStatusExpired).Error
}

// MarkConverted stamps the conversion fields on the click.
func (r *ClickRepository) MarkConverted(tx *gorm.DB, id uint, orderID string, valuePaise, commissionPaise int64, at time.Time) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&models.ClickRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":                  domain.ClickStatusConverted,
			"order_id":                orderID,
			"conversion_value_paise":  valuePaise,
			"commission_earned_paise": commissionPaise,
			"converted_at":            at,
		}).Error
}
