package card

import "strings"

// IsValidNumber applies the Luhn checksum to the card number with whitespace
// removed. Empty input and input with any non-digit rune are invalid.
func IsValidNumber(number string) bool {
	digits := strings.Join(strings.Fields(number), "")
	if digits == "" {
		return false
	}
	sum := 0
	for i := 0; i < len(digits); i++ {
		c := digits[len(digits)-1-i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return sum%10 == 0
}
