package config

import (
	"github.com/iwvelando/loan-schedule/pkg/loans"
)

// LoanConfig is the loan as written in a config file or request body.
// Frequency and RateType are names resolved by ToParameters.
type LoanConfig struct {
	Principal                    float64 `yaml:"principal" json:"principal"`
	AnnualRate                   float64 `yaml:"annualRate" json:"annualRate"`
	TermYears                    float64 `yaml:"termYears" json:"termYears"`
	Frequency                    string  `yaml:"frequency" json:"frequency"`
	RateType                     string  `yaml:"rateType" json:"rateType"`
	FloatingRateChange           float64 `yaml:"floatingRateChange,omitempty" json:"floatingRateChange,omitempty"`
	FloatingRateChangeAfterYears int     `yaml:"floatingRateChangeAfterYears,omitempty" json:"floatingRateChangeAfterYears,omitempty"`
}

// ToParameters resolves the named frequency and rate type and returns
// validated engine parameters. Every failure matches loans.ErrInvalidParameters.
func (l LoanConfig) ToParameters() (loans.LoanParameters, error) {
	frequency := l.Frequency
	if frequency == "" {
		frequency = loans.Monthly.Name
	}
	freq, err := loans.LookupFrequency(frequency)
	if err != nil {
		return loans.LoanParameters{}, &loans.ValidationError{Field: "frequency", Reason: err.Error()}
	}

	rateType, err := loans.ParseRateType(l.RateType)
	if err != nil {
		return loans.LoanParameters{}, &loans.ValidationError{Field: "rateType", Reason: err.Error()}
	}

	params := loans.LoanParameters{
		Principal:                    l.Principal,
		AnnualRatePercent:            l.AnnualRate,
		TermYears:                    l.TermYears,
		Frequency:                    freq,
		RateType:                     rateType,
		FloatingRateChangePercent:    l.FloatingRateChange,
		FloatingRateChangeAfterYears: l.FloatingRateChangeAfterYears,
	}
	if err := params.Validate(); err != nil {
		return loans.LoanParameters{}, err
	}
	return params, nil
}
