// Package money keeps every amount in integer minor units (cents). The
// remote API speaks cents, the cart computes in cents, and conversion to
// major units happens exactly once, at the presentation boundary.
package money

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/counterdesk/counterdesk/internal/errors"
)

type Cents int64

// Format renders an amount for display, e.g. 1250 -> "$12.50".
func (c Cents) Format() string {
	sign := ""
	v := int64(c)

	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}

// Major returns the amount in major units for numeric display contexts.
func (c Cents) Major() float64 {
	return float64(c) / 100
}

// FromMajor parses operator input such as "12.50", "12.5" or "12" into
// cents. A leading currency symbol is tolerated. Negative amounts and more
// than two decimal places are rejected.
func FromMajor(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")

	if s == "" {
		return 0, apperrors.ValidationError("Amount is required")
	}

	if strings.HasPrefix(s, "-") {
		return 0, apperrors.ValidationError("Amount must not be negative")
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError("Amount is not a number").WithError(err)
	}

	if len(frac) > 2 {
		return 0, apperrors.ValidationError("Amount has more than two decimal places")
	}

	// bare digits only; ParseInt would accept a sign here ("3.-5")
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, apperrors.ValidationError("Amount is not a number")
		}
	}

	// "12.5" means 12.50, not 12.05
	for len(frac) < 2 {
		frac += "0"
	}

	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, apperrors.ValidationError("Amount is not a number").WithError(err)
	}

	return Cents(units*100 + cents), nil
}
