// Package format renders amounts for human-readable output.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/constants"
)

// Currency returns a currency string with the rupee sign and Indian digit
// grouping (e.g., "-₹12,34,567.89").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 && formatted != "0.00" {
		return "-" + constants.CurrencySymbol + formatted
	}
	return constants.CurrencySymbol + formatted
}

// formatPositiveCurrency groups the last three integer digits, then pairs.
func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		head := intPart[:len(intPart)-3]
		tail := intPart[len(intPart)-3:]

		var builder strings.Builder
		for i, digit := range head {
			if i > 0 && (len(head)-i)%2 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		builder.WriteByte(',')
		builder.WriteString(tail)
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
