package money_test

import (
	"strings"
	"testing"

	apperrors "github.com/counterdesk/counterdesk/internal/errors"
	"github.com/counterdesk/counterdesk/internal/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "$0.00", money.Cents(0).Format())
	assert.Equal(t, "$0.05", money.Cents(5).Format())
	assert.Equal(t, "$5.00", money.Cents(500).Format())
	assert.Equal(t, "$12.50", money.Cents(1250).Format())
	assert.Equal(t, "$1234.07", money.Cents(123407).Format())
	assert.Equal(t, "-$3.25", money.Cents(-325).Format())
}

func TestFromMajor(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		cases := map[string]money.Cents{
			"12.50":  1250,
			"12.5":   1250,
			"12":     1200,
			"0.05":   5,
			"$4.99":  499,
			" 7.00 ": 700,
			".99":    99,
			"0":      0,
		}

		for input, want := range cases {
			got, err := money.FromMajor(input)
			require.NoError(t, err, "input %q", input)
			assert.Equal(t, want, got, "input %q", input)
		}
	})

	t.Run("Failure - Invalid Input", func(t *testing.T) {
		for _, input := range []string{"", "-1.00", "12.505", "abc", "12.x", "3.-5", "12.+5"} {
			_, err := money.FromMajor(input)
			require.Error(t, err, "input %q", input)

			appErr, ok := apperrors.IsAppError(err)
			require.True(t, ok, "input %q", input)
			assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
		}
	})
}

// Formatting then reparsing must reproduce the original cents value for any
// non-negative amount representable in the currency's precision.
func TestRoundTrip(t *testing.T) {
	values := []money.Cents{0, 1, 5, 99, 100, 101, 500, 1250, 99999, 123456789}

	for _, v := range values {
		display := strings.TrimPrefix(v.Format(), "$")

		back, err := money.FromMajor(display)
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}
}
