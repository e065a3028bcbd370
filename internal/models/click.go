package models

import (
	"time"

	"gorm.io/gorm"
)

// ClickRecord is one attributable visit to a merchant through the platform.
// Created once at issuance; only the status and conversion fields mutate.
type ClickRecord struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Token     string  `gorm:"uniqueIndex;size:64;not null" json:"token"`
	UserID    *uint   `gorm:"index" json:"user_id,omitempty"` // nil for anonymous clicks
	SessionID string  `gorm:"size:64;index" json:"session_id"`
	StoreID   uint    `gorm:"not null;index" json:"store_id"`
	CouponID  *uint   `json:"coupon_id,omitempty"`
	Network   string  `gorm:"size:32;not null;index:idx_clicks_network_order" json:"network"`
	OrderID   *string `gorm:"size:128;index:idx_clicks_network_order" json:"order_id,omitempty"`

	RedirectURL string `gorm:"size:2048;not null" json:"redirect_url"`
	Status      string `gorm:"size:20;not null;default:'PENDING';index" json:"status"` // PENDING, CONVERTED, REJECTED, EXPIRED

	// ExpiresAt ends the attribution window (late conversions are not
	// credited past it). RedirectExpiresAt ends the shorter window in
	// which /r/{token} still serves the redirect.
	ExpiresAt         time.Time `gorm:"not null;index" json:"expires_at"`
	RedirectExpiresAt time.Time `gorm:"not null" json:"redirect_expires_at"`

	ConversionValuePaise  *int64     `json:"conversion_value_paise,omitempty"`
	CommissionEarnedPaise *int64     `json:"commission_earned_paise,omitempty"`
	ConvertedAt           *time.Time `json:"converted_at,omitempty"`

	IPAddress string `gorm:"size:64" json:"-"`
	UserAgent string `gorm:"size:512" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ClickRecord) TableName() string { return "click_records" }
