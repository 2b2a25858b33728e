package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Outcome is the settled result of one submission: Success or Failure.
type Outcome interface {
	isOutcome()
}

// Success is produced when the payment endpoint acknowledges the charge.
type Success struct {
	ConfirmationRef string          `json:"ref_number"`
	AmountCharged   decimal.Decimal `json:"amount"`
	FeeCharged      decimal.Decimal `json:"fee"`
	Timestamp       time.Time       `json:"payment_time"`
}

func (Success) isOutcome() {}

// Total is the amount plus the service fee.
func (s Success) Total() decimal.Decimal {
	return s.AmountCharged.Add(s.FeeCharged)
}

// Failure carries a message fit for the user and the underlying cause.
type Failure struct {
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

func (Failure) isOutcome() {}
