package models

import (
	"time"

	"gorm.io/gorm"
)

// Store is a partner merchant. Catalog CRUD lives outside this service;
// the engine only reads stores and bumps the aggregate counters.
type Store struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:128;not null" json:"name"`
	Slug         string `gorm:"uniqueIndex;size:128;not null" json:"slug"`
	WebsiteURL   string `gorm:"size:512;not null" json:"website_url"`
	IsActive     bool   `gorm:"default:true;index" json:"is_active"`
	CashbackType string `gorm:"size:20;not null;default:'PERCENT'" json:"cashback_type"` // PERCENT | FLAT
	// CashbackValue is a percent for PERCENT stores, a rupee amount for FLAT stores.
	CashbackValue     float64 `gorm:"not null;default:0" json:"cashback_value"`
	CashbackCapPaise  int64   `gorm:"not null;default:0" json:"cashback_cap_paise"` // 0 = uncapped
	ClickCount        int64   `gorm:"not null;default:0" json:"click_count"`
	ConversionCount   int64   `gorm:"not null;default:0" json:"conversion_count"`
	TotalRevenuePaise int64   `gorm:"not null;default:0" json:"total_revenue_paise"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	AffiliateLinks []AffiliateLink `gorm:"foreignKey:StoreID" json:"affiliate_links,omitempty"`
}

func (Store) TableName() string { return "stores" }

// AffiliateLink is per-network link configuration for a store. Owned by the
// store admin; read-only to the engine.
type AffiliateLink struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	StoreID     uint   `gorm:"not null;index" json:"store_id"`
	Network     string `gorm:"size:32;not null;index" json:"network"`
	URLTemplate string `gorm:"size:1024" json:"url_template"`
	PartnerID   string `gorm:"size:128" json:"partner_id"`
	IsActive    bool   `gorm:"default:true;index" json:"is_active"`
	// CommissionRate is the platform's own commission percent on order value.
	CommissionRate float64 `gorm:"not null;default:0" json:"commission_rate"`
	Position       int     `gorm:"not null;default:0" json:"position"` // list order, tie-breaker

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AffiliateLink) TableName() string { return "affiliate_links" }

type Coupon struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	StoreID   uint           `gorm:"not null;index" json:"store_id"`
	Code      string         `gorm:"size:64;not null" json:"code"`
	Title     string         `gorm:"size:255" json:"title"`
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	ExpiresAt *time.Time     `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Coupon) TableName() string { return "coupons" }

// Live reports whether the coupon can still be attached to a click.
func (cp *Coupon) Live(now time.Time) bool {
	if !cp.IsActive {
		return false
	}
	return cp.ExpiresAt == nil || now.Before(*cp.ExpiresAt)
}
