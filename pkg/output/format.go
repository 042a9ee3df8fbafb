// Package output provides utilities for formatting and displaying amortization schedules.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/loan-schedule/pkg/format"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CsvFileName is the suggested name for a downloaded schedule.
const CsvFileName = "home-loan-amortization-schedule.csv"

// CsvHeader is the header row of an exported schedule.
var CsvHeader = []string{
	"Payment #",
	"Beginning Balance",
	"Payment per Period",
	"Principal Paid",
	"Interest Paid",
	"Remaining Balance",
}

// CsvFormat outputs in comma-separated value format, one row per period with
// amounts fixed to two decimals.
func CsvFormat(w io.Writer, records []loans.PeriodRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CsvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.PaymentNumber),
			fmtMoney(r.BeginningBalance),
			fmtMoney(r.Payment),
			fmtMoney(r.PrincipalPaid),
			fmtMoney(r.InterestPaid),
			fmtMoney(r.RemainingBalance),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CsvString returns the CSV rendering of records.
func CsvString(records []loans.PeriodRecord) string {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = CsvFormat(&buf, records)
	return buf.String()
}

func fmtMoney(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, schedule loans.Schedule) {
	p := message.NewPrinter(language.English)
	params := schedule.Parameters
	summary := schedule.Summary

	_, _ = p.Fprintf(w, "--- Amortization schedule: %s at %.2f%% over %v years (%s, %s rate) ---\n",
		format.Currency(params.Principal), params.AnnualRatePercent, params.TermYears,
		params.Frequency.Name, params.RateType)
	_, _ = p.Fprintf(w, "Payment per period: %s\n", format.Currency(summary.PaymentPerPeriod))
	if summary.RateChangePeriod > 0 {
		_, _ = p.Fprintf(w, "Payment from period %d: %s (rate %.2f%%)\n",
			summary.RateChangePeriod, format.Currency(summary.PaymentAfterRateChange),
			params.AnnualRatePercent+params.FloatingRateChangePercent)
	}
	_, _ = p.Fprintf(w, "Total interest: %s\n", format.Currency(summary.TotalInterest))
	_, _ = p.Fprintf(w, "Total paid: %s over %d payments\n\n", format.Currency(summary.TotalPaid), summary.NumberOfPayments)

	_, _ = fmt.Fprintf(w, "%-9s | %-18s | %-14s | %-14s | %-14s | %-18s\n",
		"Payment #", "Beginning Balance", "Payment", "Principal", "Interest", "Remaining Balance")
	_, _ = fmt.Fprintf(w, "%-9s | %-18s | %-14s | %-14s | %-14s | %-18s\n",
		"_________", "_________________", "_______", "_________", "________", "_________________")
	// Amounts carry their own Indian grouping; the printer groups period numbers.
	for _, r := range schedule.Records {
		_, _ = p.Fprintf(w, "%-9d | %18s | %14s | %14s | %14s | %18s\n",
			r.PaymentNumber,
			format.Currency(r.BeginningBalance),
			format.Currency(r.Payment),
			format.Currency(r.PrincipalPaid),
			format.Currency(r.InterestPaid),
			format.Currency(r.RemainingBalance),
		)
	}
}

// JSONFormat outputs the schedule, its parameters and summary as indented JSON.
func JSONFormat(w io.Writer, schedule loans.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(schedule)
}
