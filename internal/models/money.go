package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ValidCurrency accepts ISO 4217 alpha-3 codes.
func ValidCurrency(code string) bool {
	if len(code) != 3 || strings.ToUpper(code) != code {
		return false
	}
	_, err := currency.ParseISO(code)
	return err == nil
}

// MajorUnits converts an amount in the smallest currency unit into the
// currency's display unit, e.g. 100 GBP pence becomes 1.00.
func MajorUnits(amount int64, code string) decimal.Decimal {
	scale := 2
	if unit, err := currency.ParseISO(code); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}
	return decimal.New(amount, int32(-scale))
}

// FormatAmount renders amount in major units with the currency's scale and code, e.g. "10.00 GBP".
func FormatAmount(amount int64, code string) string {
	d := MajorUnits(amount, code)
	return d.StringFixed(-d.Exponent()) + " " + code
}
