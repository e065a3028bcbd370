package models

import "time"

// WebhookEvent is an audit row for every inbound affiliate webhook.
// Flagged rows need manual reconciliation (bad signature, unparseable
// payload, no matching click, conversion past the attribution window).
type WebhookEvent struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	EventID       string `gorm:"uniqueIndex;size:36;not null" json:"event_id"`
	Network       string `gorm:"size:32;not null;index" json:"network"`
	Payload       string `gorm:"type:text" json:"payload"`
	Signature     string `gorm:"size:512" json:"-"`
	Flagged       bool   `gorm:"default:false;index" json:"flagged"`
	FlagReason    string `gorm:"size:255" json:"flag_reason,omitempty"`
	TransactionID *uint  `gorm:"index" json:"transaction_id,omitempty"`
	IP            string `gorm:"size:64" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }
