package card

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"letters only", "abcd-efgh", ""},
		{"partial group", "453", "453"},
		{"exact group", "4532", "4532"},
		{"second group started", "45320", "4532 0"},
		{"full number", "4532015112830366", "4532 0151 1283 0366"},
		{"pasted with dashes", "4532-0151-1283-0366", "4532 0151 1283 0366"},
		{"truncated to 16 digits", "45320151128303669999", "4532 0151 1283 0366"},
		{"amex length", "371449635398431", "3714 4963 5398 431"},
		{"already formatted", "4532 0151 1283 0366", "4532 0151 1283 0366"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.input))
		})
	}
}

func TestFormatNumber_Idempotent(t *testing.T) {
	f := func(s string) bool {
		once := FormatNumber(s)
		return FormatNumber(once) == once
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
	for _, s := range []string{"4 5 3 2", "4532 0151 1283 0366 ", "12345678901234567890", "  "} {
		once := FormatNumber(s)
		assert.Equal(t, once, FormatNumber(once), "input %q", s)
	}
}

func TestFormatExpiry(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"1", "1"},
		{"12", "12"},
		{"012", "01/2"},
		{"0126", "01/26"},
		{"01/26", "01/26"},
		{"01262030", "01/26"},
		{"13/99", "13/99"},
		{"mm/yy", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatExpiry(tt.input))
		})
	}
}

func TestFormatCVC(t *testing.T) {
	assert.Equal(t, "", FormatCVC(""))
	assert.Equal(t, "123", FormatCVC("1a2b3c"))
	assert.Equal(t, "1234", FormatCVC("123456"))
	assert.Equal(t, "", FormatCVC("cvc"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "•••• •••• •••• 0366", Mask("4532 0151 1283 0366"))
	assert.Equal(t, "0366", Last4("4532015112830366"))
	assert.Equal(t, "12", Last4("12"))
	assert.Equal(t, "", Mask(""))
}
