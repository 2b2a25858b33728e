package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	Required("zip", "10001", v)
	assert.Equal(t, Violations{"name": CodeRequired}, v)
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"valid", "you@example.com", ""},
		{"subdomain", "a.b+c@mail.example.org", ""},
		{"blank", "", CodeRequired},
		{"missing at", "you.example.com", CodeInvalidEmail},
		{"missing domain", "you@", CodeInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := make(Violations)
			Email("email", tt.value, v)
			assert.Equal(t, tt.want, v["email"])
		})
	}
}

func TestCheck(t *testing.T) {
	v := make(Violations)
	Check("cvc", "", false, CodeInvalidCVC, v)
	Check("expiry", "13/99", false, CodeInvalidExpiry, v)
	Check("card_number", "4111 1111 1111 1111", true, CodeInvalidCardNumber, v)
	assert.Equal(t, Violations{"cvc": CodeRequired, "expiry": CodeInvalidExpiry}, v)
}

func TestAdd_KeepsFirstViolation(t *testing.T) {
	v := make(Violations)
	v.Add("email", CodeRequired)
	v.Add("email", CodeInvalidEmail)
	assert.Equal(t, CodeRequired, v["email"])
	assert.False(t, v.Empty())
}

func TestNonNegative(t *testing.T) {
	v := make(Violations)
	NonNegative("amount", decimal.NewFromInt(0), v)
	assert.True(t, v.Empty())
	NonNegative("amount", decimal.RequireFromString("-0.01"), v)
	assert.Equal(t, CodeNegative, v["amount"])
}
