// Package card normalizes and validates payment card input: number, expiry and CVC.
// Every function is pure and total; malformed input is stripped by the
// formatters and rejected by the validators, never panicked on.
package card

import "strings"

const (
	maxNumberDigits = 16
	maxExpiryDigits = 4
	maxCVCDigits    = 4
	groupSize       = 4
)

// Digits returns s with every non-digit rune removed.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// FormatNumber keeps at most 16 digits and groups them by four,
// e.g. "4532015112830366" -> "4532 0151 1283 0366".
func FormatNumber(input string) string {
	digits := truncate(Digits(input), maxNumberDigits)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%groupSize == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry shapes input as MM/YY. With fewer than three digits the
// digits are returned as typed so the user can finish the month.
func FormatExpiry(input string) string {
	digits := truncate(Digits(input), maxExpiryDigits)
	if len(digits) < 3 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// FormatCVC keeps at most four digits.
func FormatCVC(input string) string {
	return truncate(Digits(input), maxCVCDigits)
}

// Last4 returns the last four digits of a card number, or all of them when shorter.
func Last4(number string) string {
	digits := Digits(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// Mask hides everything but the last four digits: "•••• •••• •••• 0366".
func Mask(number string) string {
	last := Last4(number)
	if last == "" {
		return ""
	}
	return "•••• •••• •••• " + last
}
