package models

import (
	"time"
)

// Webhook processing outcomes.
const (
	WebhookOutcomeApplied   = "applied"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeUnmatched = "unmatched"
	WebhookOutcomeIgnored   = "ignored"
)

// WebhookEventLog records every webhook that passed signature
// verification, whatever happened to it afterwards.
type WebhookEventLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EventID        string    `gorm:"index;size:64" json:"event_id"`
	EventType      string    `gorm:"size:64" json:"event_type"`
	GatewayOrderID string    `gorm:"index;size:64" json:"gateway_order_id"`
	OrderID        string    `gorm:"size:64" json:"order_id"`
	Outcome        string    `gorm:"size:16" json:"outcome"` // applied, duplicate, unmatched, ignored
	CreatedAt      time.Time `json:"created_at"`
}
