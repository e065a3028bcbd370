package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds the per-user cashback buckets. Every transition moves a
// fixed amount between exactly two buckets (or removes it from pending);
// all mutation goes through increment-by-delta updates, never a
// read-modify-write in application memory.
type Wallet struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	PendingPaise   int64  `gorm:"not null;default:0" json:"pending_paise"`
	AvailablePaise int64  `gorm:"not null;default:0" json:"available_paise"`
	WithdrawnPaise int64  `gorm:"not null;default:0" json:"withdrawn_paise"`
	Currency       string `gorm:"size:3;default:'INR'" json:"currency"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string { return "wallets" }
