package card

import "strings"

// Brand is the issuing network inferred from a card number prefix.
type Brand string

const (
	Visa            Brand = "Visa"
	Mastercard      Brand = "Mastercard"
	AmericanExpress Brand = "American Express"
	Discover        Brand = "Discover"
	Unknown         Brand = "Unknown"
)

var brands = []Brand{Visa, Mastercard, AmericanExpress, Discover, Unknown}

func (b Brand) String() string { return string(b) }

// InferBrand classifies a card number by prefix. It is recomputed on demand
// from the current number and never cached.
func InferBrand(number string) Brand {
	n := strings.Join(strings.Fields(number), "")
	switch {
	case strings.HasPrefix(n, "4"):
		return Visa
	case len(n) >= 2 && n[0] == '5' && n[1] >= '1' && n[1] <= '5':
		return Mastercard
	case strings.HasPrefix(n, "34"), strings.HasPrefix(n, "37"):
		return AmericanExpress
	case strings.HasPrefix(n, "6011"), strings.HasPrefix(n, "65"):
		return Discover
	default:
		return Unknown
	}
}

// ParseBrand matches s against the canonical brand names, ignoring case.
func ParseBrand(s string) (Brand, bool) {
	s = strings.TrimSpace(s)
	for _, b := range brands {
		if strings.EqualFold(s, string(b)) {
			return b, true
		}
	}
	return Unknown, false
}
