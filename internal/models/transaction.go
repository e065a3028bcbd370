package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is one reconciled conversion. At most one row exists per
// (network, order_id); the composite unique index is the dedup authority
// for webhook replays.
type Transaction struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	ClickID uint   `gorm:"not null;index" json:"click_id"`
	StoreID uint   `gorm:"not null;index" json:"store_id"`
	Network string `gorm:"size:32;not null;uniqueIndex:idx_transactions_network_order" json:"network"`
	OrderID string `gorm:"size:128;not null;uniqueIndex:idx_transactions_network_order" json:"order_id"`

	OrderAmountPaise      int64   `gorm:"not null" json:"order_amount_paise"`
	CashbackPaise         int64   `gorm:"not null" json:"cashback_paise"`
	CommissionRate        float64 `gorm:"not null" json:"commission_rate"`
	CommissionEarnedPaise int64   `gorm:"not null" json:"commission_earned_paise"`

	Status          string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"` // PENDING, APPROVED, REJECTED, CANCELLED
	AdminNote       string     `gorm:"size:512" json:"admin_note,omitempty"`
	RejectionReason string     `gorm:"size:512" json:"rejection_reason,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) Terminal() bool { return t.Status != "PENDING" }
