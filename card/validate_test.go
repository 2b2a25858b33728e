package card

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// referenceLuhn walks left to right, doubling digits whose distance from the
// right end is odd.
func referenceLuhn(s string) bool {
	n := len(s)
	total := 0
	for i := 0; i < n; i++ {
		d := int(s[i] - '0')
		if (n-1-i)%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		total += d
	}
	return total%10 == 0
}

func TestIsValidNumber(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"4532015112830366", true},
		{"4532015112830367", false},
		{"4532 0151 1283 0366", true},
		{"4111111111111111", true},
		{"371449635398431", true},
		{"5555555555554444", true},
		{"6011111111111117", true},
		{"", false},
		{"   ", false},
		{"4532-0151-1283-0366", false},
		{"abcd", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.number), func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidNumber(tt.number))
		})
	}
}

func TestIsValidNumber_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	buf := make([]byte, 16)
	for i := 0; i < 5000; i++ {
		for j := range buf {
			buf[j] = byte('0' + rng.Intn(10))
		}
		s := string(buf)
		if got, want := IsValidNumber(s), referenceLuhn(s); got != want {
			t.Fatalf("IsValidNumber(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestInferBrand(t *testing.T) {
	tests := []struct {
		number string
		want   Brand
	}{
		{"4111111111111111", Visa},
		{"4111 1111 1111 1111", Visa},
		{"5105105105105100", Mastercard},
		{"5555555555554444", Mastercard},
		{"5012345678901234", Unknown},
		{"5612345678901234", Unknown},
		{"371449635398431", AmericanExpress},
		{"341111111111111", AmericanExpress},
		{"6011111111111117", Discover},
		{"6511111111111111", Discover},
		{"6012111111111111", Unknown},
		{"3530111333300000", Unknown},
		{"", Unknown},
		{"5", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			assert.Equal(t, tt.want, InferBrand(tt.number))
		})
	}
}

func TestParseBrand(t *testing.T) {
	b, ok := ParseBrand("american express")
	assert.True(t, ok)
	assert.Equal(t, AmericanExpress, b)

	b, ok = ParseBrand("VISA")
	assert.True(t, ok)
	assert.Equal(t, Visa, b)

	_, ok = ParseBrand("amex")
	assert.False(t, ok)
}

func TestIsValidExpiryAt(t *testing.T) {
	now := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  bool
	}{
		{"10/26", true},
		{"09/26", false},
		{"11/26", true},
		{"01/27", true},
		{"12/99", true},
		{"13/99", false},
		{"00/30", false},
		{"1/26", false},
		{"1026", false},
		{"10/2026", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidExpiryAt(tt.value, now))
		})
	}
}

func TestIsValidExpiryAt_MonthBoundary(t *testing.T) {
	lastInstant := time.Date(2026, time.October, 31, 23, 59, 59, 999999999, time.UTC)
	assert.True(t, IsValidExpiryAt("10/26", lastInstant))
	assert.False(t, IsValidExpiryAt("10/26", lastInstant.Add(time.Nanosecond)))

	firstInstant := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, IsValidExpiryAt("10/26", firstInstant))
	assert.False(t, IsValidExpiryAt("09/26", firstInstant))
}

func TestIsValidExpiry_CurrentMonth(t *testing.T) {
	now := time.Now()
	current := now.Format("01/06")
	previous := now.AddDate(0, 0, -now.Day()).Format("01/06")
	assert.True(t, IsValidExpiry(current))
	assert.False(t, IsValidExpiry(previous))
}

func TestIsValidCVC(t *testing.T) {
	tests := []struct {
		name  string
		cvc   string
		brand Brand
		want  bool
	}{
		{"amex four digits", "1234", AmericanExpress, true},
		{"amex three digits", "123", AmericanExpress, false},
		{"visa four digits", "1234", Visa, false},
		{"visa three digits", "123", Visa, true},
		{"unknown three digits", "123", Unknown, true},
		{"case insensitive brand", "1234", Brand("AMERICAN EXPRESS"), true},
		{"letters", "12a", Visa, false},
		{"empty", "", Visa, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCVC(tt.cvc, tt.brand))
		})
	}
}
