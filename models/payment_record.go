package models

import (
	"time"
)

// Payment statuses.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// PaymentRecord is the authoritative record of one payment attempt for an
// order. One record per order_id; the record is never deleted, it is the
// audit trail of the transaction.
type PaymentRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReferenceID    string    `gorm:"uniqueIndex;size:64" json:"reference_id"`
	OrderID        string    `gorm:"uniqueIndex;not null;size:64" json:"order_id"`
	UserID         uint      `json:"user_id"`
	Amount         int64     `json:"amount"` // smallest currency unit
	Currency       string    `gorm:"size:8" json:"currency"`
	Status         string    `gorm:"size:16;index" json:"status"` // pending, paid, failed
	GatewayOrderID string    `gorm:"uniqueIndex;size:64" json:"gateway_order_id"`
	GatewaySecret  string    `gorm:"size:255" json:"-"`
	Email          string    `gorm:"size:255" json:"email"`
	Phone          string    `gorm:"size:32" json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Terminal reports whether the record has reached a final status.
func (p *PaymentRecord) Terminal() bool {
	return p.Status == PaymentStatusPaid || p.Status == PaymentStatusFailed
}
