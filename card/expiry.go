package card

import (
	"regexp"
	"strconv"
	"time"
)

var expiryShape = regexp.MustCompile(`^\d{2}/\d{2}$`)

// IsValidExpiry reports whether an MM/YY expiry is well formed and not in the past.
func IsValidExpiry(value string) bool {
	return IsValidExpiryAt(value, time.Now())
}

// IsValidExpiryAt is IsValidExpiry against an explicit clock. A card stays
// valid until the last instant of its expiry month (year 2000+YY), in now's location.
func IsValidExpiryAt(value string, now time.Time) bool {
	if !expiryShape.MatchString(value) {
		return false
	}
	month, _ := strconv.Atoi(value[:2])
	yy, _ := strconv.Atoi(value[3:])
	if month < 1 || month > 12 {
		return false
	}
	firstOfNext := time.Date(2000+yy, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	endOfMonth := firstOfNext.Add(-time.Nanosecond)
	return !endOfMonth.Before(now)
}
