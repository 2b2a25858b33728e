package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AttemptStatus is the settled result of one submission.
type AttemptStatus string

const (
	AttemptSucceeded AttemptStatus = "succeeded"
	AttemptFailed    AttemptStatus = "failed"
)

// PaymentAttempt is a ledger row written once per submission.
// Only the brand and last four digits of the card are kept.
type PaymentAttempt struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	AttemptID string        `gorm:"size:36;uniqueIndex;not null" json:"attempt_id"`
	InvoiceID string        `gorm:"size:50;index;not null" json:"invoice_id"`
	Status    AttemptStatus `gorm:"size:20;not null" json:"status"`

	Amount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Fee    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"fee"`

	CardBrand string `gorm:"size:30" json:"card_brand"`
	CardLast4 string `gorm:"size:4" json:"card_last4"`
	Reason    string `gorm:"size:255" json:"reason,omitempty"`
}

// Succeeded returns true for a settled successful attempt.
func (a *PaymentAttempt) Succeeded() bool {
	return a.Status == AttemptSucceeded
}
