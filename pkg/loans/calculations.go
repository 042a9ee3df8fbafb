// Package loans computes level-payment amortization schedules, including a
// single scheduled change of rate for floating-rate loans.
package loans

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// PeriodRecord holds the values for a given payment period.
type PeriodRecord struct {
	PaymentNumber    int     `json:"paymentNumber"`
	BeginningBalance float64 `json:"beginningBalance"`
	Payment          float64 `json:"paymentPerPeriod"`
	PrincipalPaid    float64 `json:"principalPaid"`
	InterestPaid     float64 `json:"interestPaid"`
	RemainingBalance float64 `json:"remainingBalance"`
}

// Summary holds the totals derived from a complete schedule.
type Summary struct {
	PaymentPerPeriod       float64 `json:"paymentPerPeriod"`
	TotalInterest          float64 `json:"totalInterest"`
	TotalPrincipal         float64 `json:"totalPrincipal"`
	TotalPaid              float64 `json:"totalPaid"`
	NumberOfPayments       int     `json:"numberOfPayments"`
	RateChangePeriod       int     `json:"rateChangePeriod,omitempty"`
	PaymentAfterRateChange float64 `json:"paymentAfterRateChange,omitempty"`
}

// Schedule is a fully materialized amortization schedule.
type Schedule struct {
	Parameters LoanParameters `json:"parameters"`
	Records    []PeriodRecord `json:"records"`
	Summary    Summary        `json:"summary"`
}

// tinyPeriodRate is the rate below which 1+r loses too many digits for the
// direct annuity formula.
const tinyPeriodRate = 1e-8

// LevelPayment calculates the constant payment that retires balance over
// periods at periodRate using the standard annuity formula; a zero rate
// divides the balance evenly.
func LevelPayment(balance, periodRate float64, periods int) float64 {
	if periodRate <= 0 {
		return balance / float64(periods)
	}

	n := float64(periods)
	denominator := 1 - math.Pow(1+periodRate, -n)
	if periodRate < tinyPeriodRate {
		// Same quantity, computed without rounding 1+r.
		denominator = -math.Expm1(-n * math.Log1p(periodRate))
	}
	if denominator <= 0 {
		return balance / n
	}
	return (balance * periodRate) / denominator
}

// repricedPayment is the payment after a floating-rate change, re-amortizing
// the current balance over the periods that remain.
func repricedPayment(balance, periodRate float64, remainingPeriods int) float64 {
	switch {
	case balance > 0 && remainingPeriods > 0 && periodRate > 0:
		return LevelPayment(balance, periodRate, remainingPeriods)
	case remainingPeriods > 0:
		return balance / float64(remainingPeriods)
	default:
		return balance
	}
}

// ComputeSchedule validates params and produces the complete schedule. The
// final period always pays off whatever balance remains so the schedule ends
// at exactly zero.
func ComputeSchedule(params LoanParameters) (Schedule, error) {
	if err := params.Validate(); err != nil {
		return Schedule{}, err
	}

	totalPeriods := params.TotalPeriods()
	periodRate := params.PeriodRate()
	payment := LevelPayment(params.Principal, periodRate, totalPeriods)
	changePeriod := params.RateChangePeriod()

	records := make([]PeriodRecord, 0, totalPeriods)
	balance := params.Principal

	for i := 1; i <= totalPeriods; i++ {
		if i == changePeriod {
			periodRate = params.FloatingPeriodRate()
			payment = repricedPayment(balance, periodRate, totalPeriods-(changePeriod-1))
		}

		interestPaid := balance * periodRate
		principalPaid := payment - interestPaid

		if i == totalPeriods {
			principalPaid = balance
			payment = principalPaid + interestPaid
		}

		balance -= principalPaid
		record := PeriodRecord{
			PaymentNumber:    i,
			BeginningBalance: balance + principalPaid,
			Payment:          payment,
			PrincipalPaid:    principalPaid,
			InterestPaid:     interestPaid,
		}
		if balance < 0 {
			balance = 0
		}
		record.RemainingBalance = balance

		records = append(records, record)
	}

	if !finiteRecords(records) {
		return Schedule{}, invalid("parameters", "produce a non-finite schedule")
	}

	summary := Summarize(records)
	if changePeriod > 0 {
		summary.RateChangePeriod = changePeriod
		summary.PaymentAfterRateChange = records[changePeriod-1].Payment
	}

	return Schedule{
		Parameters: params,
		Records:    records,
		Summary:    summary,
	}, nil
}

func finiteRecords(records []PeriodRecord) bool {
	for _, r := range records {
		for _, v := range []float64{r.BeginningBalance, r.Payment, r.PrincipalPaid, r.InterestPaid, r.RemainingBalance} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// Summarize derives the totals of a schedule.
func Summarize(records []PeriodRecord) Summary {
	var summary Summary
	if len(records) == 0 {
		return summary
	}

	summary.PaymentPerPeriod = records[0].Payment
	summary.NumberOfPayments = len(records)
	for _, r := range records {
		summary.TotalInterest += r.InterestPaid
		summary.TotalPrincipal += r.PrincipalPaid
		summary.TotalPaid += r.Payment
	}
	return summary
}

// AmortizationScheduleGenerator wraps ComputeSchedule with logging.
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan
func (g *AmortizationScheduleGenerator) GenerateSchedule(params LoanParameters) (Schedule, error) {
	schedule, err := ComputeSchedule(params)
	if err != nil {
		g.logger.Debug("rejected loan parameters",
			zap.String("op", "loans.GenerateSchedule"),
			zap.Error(err),
		)
		return Schedule{}, err
	}

	if period := schedule.Summary.RateChangePeriod; period > 0 {
		g.logger.Debug(fmt.Sprintf("period %d (year %d): rate moves to %.4f%%, payment %.2f -> %.2f",
			period, params.Frequency.yearOf(period),
			params.AnnualRatePercent+params.FloatingRateChangePercent,
			schedule.Summary.PaymentPerPeriod, schedule.Summary.PaymentAfterRateChange),
			zap.String("op", "loans.GenerateSchedule"),
		)
	} else if params.IsFloating() {
		g.logger.Debug("floating rate change falls outside the loan term, schedule is fixed-rate",
			zap.String("op", "loans.GenerateSchedule"),
			zap.Int("changeAfterYears", params.FloatingRateChangeAfterYears),
			zap.Float64("termYears", params.TermYears),
		)
	}

	g.logger.Info("amortization schedule computed",
		zap.String("op", "loans.GenerateSchedule"),
		zap.Int("payments", schedule.Summary.NumberOfPayments),
		zap.Float64("paymentPerPeriod", schedule.Summary.PaymentPerPeriod),
		zap.Float64("totalInterest", schedule.Summary.TotalInterest),
	)

	return schedule, nil
}
