// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/loan-schedule/pkg/loans"
)

// HomeLoan is the reference fixed-rate loan: 30,00,000 at 7% over 20 years, paid monthly.
func HomeLoan() loans.LoanParameters {
	return loans.LoanParameters{
		Principal:         3000000,
		AnnualRatePercent: 7.0,
		TermYears:         20,
		Frequency:         loans.Monthly,
		RateType:          loans.RateFixed,
	}
}

// FloatingHomeLoan is HomeLoan with the rate rising 0.5% after 5 years.
func FloatingHomeLoan() loans.LoanParameters {
	p := HomeLoan()
	p.RateType = loans.RateFloating
	p.FloatingRateChangePercent = 0.5
	p.FloatingRateChangeAfterYears = 5
	return p
}

// ZeroRateLoan is 10,00,000 over 10 years, paid monthly, with no interest.
func ZeroRateLoan() loans.LoanParameters {
	return loans.LoanParameters{
		Principal:         1000000,
		AnnualRatePercent: 0,
		TermYears:         10,
		Frequency:         loans.Monthly,
		RateType:          loans.RateFixed,
	}
}

// FindRecord finds a record by its payment number.
// Returns a pointer to the record if found, nil otherwise.
func FindRecord(records []loans.PeriodRecord, paymentNumber int) *loans.PeriodRecord {
	for i := range records {
		if records[i].PaymentNumber == paymentNumber {
			return &records[i]
		}
	}
	return nil
}
