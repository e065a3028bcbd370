package models

import (
	"time"

	"gorm.io/gorm"
)

// ReferralReward credits a referrer when a referred user completes a
// qualifying event. The composite unique index allows at most one reward
// per (referrer, referred, type), which is what makes retried approval
// calls safe.
type ReferralReward struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	ReferrerID     uint   `gorm:"not null;index;uniqueIndex:idx_rewards_pair_type" json:"referrer_id"`
	ReferredUserID uint   `gorm:"not null;uniqueIndex:idx_rewards_pair_type" json:"referred_user_id"`
	RewardType     string `gorm:"size:32;not null;uniqueIndex:idx_rewards_pair_type" json:"reward_type"` // FIRST_PURCHASE
	RewardPaise    int64  `gorm:"not null" json:"reward_paise"`
	// TransactionID is the referred user's transaction that triggered the reward.
	TransactionID uint       `gorm:"not null;index" json:"transaction_id"`
	Status        string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"` // PENDING, APPROVED, REJECTED
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Referrer     User `gorm:"foreignKey:ReferrerID" json:"-"`
	ReferredUser User `gorm:"foreignKey:ReferredUserID" json:"-"`
}

func (ReferralReward) TableName() string { return "referral_rewards" }
