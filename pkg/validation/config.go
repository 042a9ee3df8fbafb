package validation

import (
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/loans"
)

// FloatingRateWarnings reports floating-rate settings that will not affect the schedule.
func FloatingRateWarnings(params loans.LoanParameters) []string {
	var warnings []string

	if !params.IsFloating() {
		if params.FloatingRateChangePercent != 0 || params.FloatingRateChangeAfterYears != 0 {
			warnings = append(warnings,
				"floating rate change is configured but the loan is fixed-rate - it will be ignored")
		}
		return warnings
	}

	if params.FloatingRateChangePercent == 0 {
		warnings = append(warnings,
			"floating rate change is 0% - the schedule matches a fixed-rate loan")
	}
	if params.Validate() == nil && params.RateChangePeriod() == 0 {
		warnings = append(warnings, fmt.Sprintf(
			"floating rate change after %d years falls outside the %v-year term - the schedule matches a fixed-rate loan",
			params.FloatingRateChangeAfterYears, params.TermYears))
	}

	return warnings
}
