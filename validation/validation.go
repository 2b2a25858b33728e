package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Violation codes reported per field.
const (
	CodeRequired          = "required"
	CodeInvalidEmail      = "invalid_email"
	CodeInvalidCardNumber = "invalid_card_number"
	CodeInvalidExpiry     = "invalid_expiry"
	CodeInvalidCVC        = "invalid_cvc"
	CodeInvalidCountry    = "invalid_country"
	CodeNegative          = "must_not_be_negative"
	CodeInvalidPriority   = "invalid_priority"
)

var validate = validator.New()

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, CodeRequired)
	}
}

// Email reports required when blank and invalid_email when not shaped like an address.
func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, CodeRequired)
		return
	}
	if err := validate.Var(value, "email"); err != nil {
		v.Add(field, CodeInvalidEmail)
	}
}

// Check records code for field when ok is false. Blank values report required instead.
func Check(field, value string, ok bool, code string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, CodeRequired)
		return
	}
	if !ok {
		v.Add(field, code)
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, CodeNegative)
	}
}
