package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/invoice-pay/card"
	"github.com/diewo77/invoice-pay/validation"
)

// Field names a form input.
type Field string

const (
	FieldEmail          Field = "email"
	FieldCardNumber     Field = "card_number"
	FieldExpiry         Field = "expiry"
	FieldCVC            Field = "cvc"
	FieldCardholderName Field = "cardholder_name"
	FieldCountry        Field = "country"
	FieldZip            Field = "zip"
)

// Fields lists every form input in display order.
var Fields = []Field{
	FieldEmail, FieldCardNumber, FieldExpiry, FieldCVC,
	FieldCardholderName, FieldCountry, FieldZip,
}

// Country is one of the billing countries offered by the form.
type Country string

const (
	CountryUnitedStates Country = "United States"
	CountryBrazil       Country = "Brazil"
	CountryCanada       Country = "Canada"

	DefaultCountry = CountryUnitedStates
)

var Countries = []Country{CountryUnitedStates, CountryBrazil, CountryCanada}

// ParseCountry matches s against Countries, ignoring case.
func ParseCountry(s string) (Country, bool) {
	for _, c := range Countries {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return "", false
}

// Form holds the card details of one payment attempt. Card number, expiry and
// CVC are stored only in their formatted shape.
type Form struct {
	Email          string  `json:"email"`
	CardNumber     string  `json:"card_number"`
	Expiry         string  `json:"expiry"`
	CVC            string  `json:"cvc"`
	CardholderName string  `json:"cardholder_name"`
	Country        Country `json:"country"`
	Zip            string  `json:"zip"`
}

// Set normalizes raw for field, stores it and returns the stored value.
func (f *Form) Set(field Field, raw string) (string, error) {
	switch field {
	case FieldEmail:
		f.Email = strings.TrimSpace(raw)
		return f.Email, nil
	case FieldCardNumber:
		f.CardNumber = card.FormatNumber(raw)
		return f.CardNumber, nil
	case FieldExpiry:
		f.Expiry = card.FormatExpiry(raw)
		return f.Expiry, nil
	case FieldCVC:
		f.CVC = card.FormatCVC(raw)
		return f.CVC, nil
	case FieldCardholderName:
		f.CardholderName = raw
		return f.CardholderName, nil
	case FieldCountry:
		c, ok := ParseCountry(raw)
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownCountry, raw)
		}
		f.Country = c
		return string(c), nil
	case FieldZip:
		f.Zip = strings.TrimSpace(raw)
		return f.Zip, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// Get returns the stored value of field.
func (f Form) Get(field Field) (string, error) {
	switch field {
	case FieldEmail:
		return f.Email, nil
	case FieldCardNumber:
		return f.CardNumber, nil
	case FieldExpiry:
		return f.Expiry, nil
	case FieldCVC:
		return f.CVC, nil
	case FieldCardholderName:
		return f.CardholderName, nil
	case FieldCountry:
		return string(f.Country), nil
	case FieldZip:
		return f.Zip, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// Brand is inferred from the current card number on every call.
func (f Form) Brand() card.Brand {
	return card.InferBrand(f.CardNumber)
}

// CountryOrDefault returns the chosen country, or DefaultCountry when none was picked.
func (f Form) CountryOrDefault() Country {
	if f.Country == "" {
		return DefaultCountry
	}
	return f.Country
}

// IsEmpty returns true for a freshly reset form.
func (f Form) IsEmpty() bool {
	return f == Form{}
}

// Masked returns a copy safe to display or log: card number and CVC are hidden.
func (f Form) Masked() Form {
	f.CardNumber = card.Mask(f.CardNumber)
	if f.CVC != "" {
		f.CVC = strings.Repeat("•", len(f.CVC))
	}
	return f
}

// Validate runs the form-level checks against the current time.
func (f Form) Validate() validation.Violations {
	return f.ValidateAt(time.Now())
}

// ValidateAt reports a violation for every field that blocks submission.
func (f Form) ValidateAt(now time.Time) validation.Violations {
	v := make(validation.Violations)
	validation.Email(string(FieldEmail), f.Email, v)
	validation.Check(string(FieldCardNumber), f.CardNumber, card.IsValidNumber(f.CardNumber), validation.CodeInvalidCardNumber, v)
	validation.Check(string(FieldExpiry), f.Expiry, card.IsValidExpiryAt(f.Expiry, now), validation.CodeInvalidExpiry, v)
	validation.Check(string(FieldCVC), f.CVC, card.IsValidCVC(f.CVC, f.Brand()), validation.CodeInvalidCVC, v)
	validation.Required(string(FieldCardholderName), f.CardholderName, v)
	validation.Required(string(FieldZip), f.Zip, v)
	if f.Country != "" {
		if _, ok := ParseCountry(string(f.Country)); !ok {
			v.Add(string(FieldCountry), validation.CodeInvalidCountry)
		}
	}
	return v
}

// ValidAt returns true when ValidateAt reports nothing.
func (f Form) ValidAt(now time.Time) bool {
	return f.ValidateAt(now).Empty()
}

// SplitName takes the first and last whitespace-separated tokens of a full
// name. A single token is used for both; a blank name yields two empty strings.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], parts[len(parts)-1]
}
