package card

import "strings"

// IsValidCVC requires exactly four digits for American Express and three for
// every other brand.
func IsValidCVC(cvc string, brand Brand) bool {
	if Digits(cvc) != cvc {
		return false
	}
	if strings.EqualFold(string(brand), string(AmericanExpress)) {
		return len(cvc) == 4
	}
	return len(cvc) == 3
}
