package loans

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
)

// ErrInvalidParameters is matched by every validation failure.
var ErrInvalidParameters = errors.New("invalid loan parameters")

// ValidationError names the offending field of a rejected LoanParameters.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidParameters, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidParameters.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidParameters
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RateType selects between a fixed rate and a rate with one scheduled change.
type RateType string

const (
	RateFixed    RateType = "fixed"
	RateFloating RateType = "floating"
)

// ParseRateType accepts "fixed" or "floating" in any case; empty means fixed.
func ParseRateType(value string) (RateType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(RateFixed):
		return RateFixed, nil
	case string(RateFloating):
		return RateFloating, nil
	default:
		return "", fmt.Errorf("unknown rate type %q, expected %s or %s", value, RateFixed, RateFloating)
	}
}

// Frequency is a payment frequency expressed as Payments made every Years
// years, so sub-annual schedules like one payment every 3 years stay exact.
type Frequency struct {
	Name     string `json:"name"`
	Payments int    `json:"payments"`
	Years    int    `json:"years"`
}

// Built-in frequencies.
var (
	Monthly     = Frequency{Name: "monthly", Payments: 12, Years: 1}
	SemiAnnual  = Frequency{Name: "6months", Payments: 2, Years: 1}
	Yearly      = Frequency{Name: "yearly", Payments: 1, Years: 1}
	EveryThree  = Frequency{Name: "3years", Payments: 1, Years: 3}
	EveryFive   = Frequency{Name: "5years", Payments: 1, Years: 5}
	frequencies = map[string]Frequency{
		Monthly.Name:    Monthly,
		SemiAnnual.Name: SemiAnnual,
		Yearly.Name:     Yearly,
		EveryThree.Name: EveryThree,
		EveryFive.Name:  EveryFive,
	}
)

// LookupFrequency returns the built-in frequency registered under name.
func LookupFrequency(name string) (Frequency, error) {
	f, ok := frequencies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Frequency{}, fmt.Errorf("unknown payment frequency %q, expected one of %s",
			name, strings.Join(FrequencyNames(), ", "))
	}
	return f, nil
}

// Frequencies lists the built-in frequencies, most frequent first.
func Frequencies() []Frequency {
	list := make([]Frequency, 0, len(frequencies))
	for _, f := range frequencies {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].PaymentsPerYear() > list[j].PaymentsPerYear()
	})
	return list
}

// FrequencyNames lists the built-in frequency names, most frequent first.
func FrequencyNames() []string {
	list := Frequencies()
	names := make([]string, len(list))
	for i, f := range list {
		names[i] = f.Name
	}
	return names
}

// PaymentsPerYear returns the (possibly fractional) number of payments per year.
func (f Frequency) PaymentsPerYear() float64 {
	return float64(f.Payments) / float64(f.Years)
}

// periodsIn returns how many whole periods fit in the given number of whole years.
func (f Frequency) periodsIn(years int) int {
	return years * f.Payments / f.Years
}

// yearOf returns the 1-based year in which period i falls.
func (f Frequency) yearOf(period int) int {
	return (period*f.Years + f.Payments - 1) / f.Payments
}

// LoanParameters are the inputs of one schedule calculation.
type LoanParameters struct {
	Principal                    float64   `json:"principal"`
	AnnualRatePercent            float64   `json:"annualRate"`
	TermYears                    float64   `json:"termYears"`
	Frequency                    Frequency `json:"frequency"`
	RateType                     RateType  `json:"rateType"`
	FloatingRateChangePercent    float64   `json:"floatingRateChange,omitempty"`
	FloatingRateChangeAfterYears int       `json:"floatingRateChangeAfterYears,omitempty"`
}

// IsFloating reports whether a rate change is scheduled.
func (p LoanParameters) IsFloating() bool {
	return p.RateType == RateFloating
}

// TotalPeriods returns round(term * payments per year).
func (p LoanParameters) TotalPeriods() int {
	return int(math.Round(p.TermYears * p.Frequency.PaymentsPerYear()))
}

// PeriodRate returns the initial per-period rate as a fraction.
func (p LoanParameters) PeriodRate() float64 {
	return (p.AnnualRatePercent / constants.PercentageMultiplier) / p.Frequency.PaymentsPerYear()
}

// FloatingPeriodRate returns the per-period rate after the scheduled change.
func (p LoanParameters) FloatingPeriodRate() float64 {
	return ((p.AnnualRatePercent + p.FloatingRateChangePercent) / constants.PercentageMultiplier) / p.Frequency.PaymentsPerYear()
}

// RateChangePeriod returns the 1-based period on which the floating rate takes
// effect, or 0 when no change applies. Periods elapsed before the change are
// floor(changeAfterYears * paymentsPerYear).
func (p LoanParameters) RateChangePeriod() int {
	if !p.IsFloating() {
		return 0
	}
	total := p.TotalPeriods()
	if float64(p.FloatingRateChangeAfterYears)*p.Frequency.PaymentsPerYear() >= float64(total) {
		return 0
	}
	elapsed := p.Frequency.periodsIn(p.FloatingRateChangeAfterYears)
	if elapsed >= total {
		return 0
	}
	return elapsed + 1
}

// Validate rejects parameters that cannot produce a finite, complete schedule.
func (p LoanParameters) Validate() error {
	if !mathutil.IsFinite(p.Principal, p.AnnualRatePercent, p.TermYears, p.FloatingRateChangePercent) {
		return invalid("parameters", "must be finite numbers")
	}
	if p.Principal <= 0 {
		return invalid("principal", "must be positive, got %v", p.Principal)
	}
	if p.AnnualRatePercent < 0 {
		return invalid("annualRate", "must not be negative, got %v", p.AnnualRatePercent)
	}
	if p.TermYears <= 0 {
		return invalid("termYears", "must be positive, got %v", p.TermYears)
	}
	if p.Frequency.Payments <= 0 || p.Frequency.Years <= 0 {
		return invalid("frequency", "must have positive payments and years, got %d/%d",
			p.Frequency.Payments, p.Frequency.Years)
	}

	periods := p.TermYears * p.Frequency.PaymentsPerYear()
	if !mathutil.IsWhole(periods, constants.PeriodCountTolerance) {
		return invalid("termYears", "%v years is not a whole number of %s periods", p.TermYears, p.Frequency.Name)
	}
	total := p.TotalPeriods()
	if total < 1 {
		return invalid("termYears", "%v years yields no %s payments", p.TermYears, p.Frequency.Name)
	}
	if total > constants.MaxTotalPeriods {
		return invalid("termYears", "%d payments exceeds the maximum of %d", total, constants.MaxTotalPeriods)
	}

	switch p.RateType {
	case RateFixed:
	case RateFloating:
		if p.FloatingRateChangeAfterYears < 0 {
			return invalid("floatingRateChangeAfterYears", "must not be negative, got %d", p.FloatingRateChangeAfterYears)
		}
		if p.AnnualRatePercent+p.FloatingRateChangePercent < 0 {
			return invalid("floatingRateChange", "would make the rate negative (%v%% %+v%%)",
				p.AnnualRatePercent, p.FloatingRateChangePercent)
		}
	default:
		return invalid("rateType", "must be %s or %s, got %q", RateFixed, RateFloating, p.RateType)
	}

	return nil
}
