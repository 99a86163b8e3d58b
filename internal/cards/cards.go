// Package cards holds the local checks run on raw card details before they
// are sent to the gateway.
package cards

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Brand struct {
	Name    string
	pattern *regexp.Regexp
}

var brands = []Brand{
	{"Visa", regexp.MustCompile(`^4[0-9]{12}(?:[0-9]{3})?$`)},
	{"Mastercard", regexp.MustCompile(`^5[1-5][0-9]{14}$`)},
	{"Maestro", regexp.MustCompile(`^(5018|5020|5038|6304|6759|6761|6763)[0-9]{8,15}$`)},
	{"American Express", regexp.MustCompile(`^3[47][0-9]{13}$`)},
	{"Diners Club", regexp.MustCompile(`^3(?:0[0-5]|[68][0-9])[0-9]{11}$`)},
	{"JCB", regexp.MustCompile(`^(?:2131|1800|35\d{3})\d{11}$`)},
}

var securityCode = regexp.MustCompile(`^([0-9]{3,4})$`)

// Normalize strips the spaces and dashes people type into card numbers.
func Normalize(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}

// BrandOf returns the first brand whose pattern matches number.
func BrandOf(number string) (Brand, bool) {
	n := Normalize(number)
	for _, b := range brands {
		if b.pattern.MatchString(n) {
			return b, true
		}
	}
	return Brand{}, false
}

func ValidNumber(number string) bool {
	_, ok := BrandOf(number)
	return ok
}

func ValidSecurityCode(code string) bool { return securityCode.MatchString(code) }

// ParseExpiry reads an MMYY expiry and returns the first instant after the
// card's last valid day.
func ParseExpiry(mmyy string) (time.Time, bool) {
	if len(mmyy) != 4 {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(mmyy[:2])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(mmyy[2:])
	if err != nil || year < 0 {
		return time.Time{}, false
	}
	return time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC), true
}

// ValidExpiry accepts MMYY dates whose month has not ended at now.
func ValidExpiry(mmyy string, now time.Time) bool {
	end, ok := ParseExpiry(mmyy)
	return ok && now.UTC().Before(end)
}

// LastFour returns the trailing four digits of a card number.
func LastFour(number string) string {
	n := Normalize(number)
	if len(n) < 4 {
		return n
	}
	return n[len(n)-4:]
}
