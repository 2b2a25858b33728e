package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Priority ranks how urgently an invoice should be paid.
type Priority string

const (
	PriorityNormal   Priority = "Normal"
	PriorityHigh     Priority = "High"
	PriorityUrgent   Priority = "Urgent"
	PriorityCritical Priority = "Critical"
)

var priorities = []Priority{PriorityNormal, PriorityHigh, PriorityUrgent, PriorityCritical}

// Valid returns true for one of the four known priorities.
func (p Priority) Valid() bool {
	for _, known := range priorities {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePriority matches s against the known priorities, ignoring case.
func ParsePriority(s string) (Priority, bool) {
	for _, known := range priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, true
		}
	}
	return "", false
}

// Invoice is a bill selected by the host for payment.
// It is supplied in memory and never modified by the payment flow.
type Invoice struct {
	ID        string          `json:"id"`
	Vendor    string          `json:"vendor"`
	IssueDate time.Time       `json:"issue_date"`
	DueDate   time.Time       `json:"due_date"`
	Amount    decimal.Decimal `json:"amount"`
	Priority  Priority        `json:"priority"`
}

// IsOverdue returns true once the due date has passed.
func (i *Invoice) IsOverdue(now time.Time) bool {
	return now.After(i.DueDate.AddDate(0, 0, 1))
}
