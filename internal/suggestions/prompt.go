package suggestions

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/shopspring/decimal"
)

const instructions = "Provide a simple, readable, and concise step-by-step plan for paying off a home loan sooner. " +
	"Use a short, bulleted list. The plan should be based on the user's financial details and the loan terms provided. " +
	"Be direct and avoid long explanations. Only include the final calculated values for the new total monthly payment, " +
	"the new loan term, and the reduction in the loan term."

// Request carries the loan and the borrower's figures for one suggestion.
type Request struct {
	Loan                    loans.LoanParameters
	AnnualSalary            float64
	AdditionalAffordability float64
}

// BuildPrompt renders the prompt sent to the text-generation service.
func BuildPrompt(req Request) (string, error) {
	if err := req.Loan.Validate(); err != nil {
		return "", err
	}
	if !(req.AnnualSalary > 0) || !(req.AdditionalAffordability > 0) {
		return "", ErrMissingFinancials
	}

	loan := req.Loan
	var b strings.Builder
	b.WriteString(instructions)
	fmt.Fprintf(&b, "\n- Principal: %s%s", constants.CurrencySymbol, number(loan.Principal))
	fmt.Fprintf(&b, "\n- Annual Rate: %s%%", number(loan.AnnualRatePercent))
	fmt.Fprintf(&b, "\n- Loan Term: %s years", number(loan.TermYears))
	fmt.Fprintf(&b, "\n- Payment Frequency: %s", loan.Frequency.Name)
	fmt.Fprintf(&b, "\n- User's annual salary: %s%s", constants.CurrencySymbol, number(req.AnnualSalary))
	fmt.Fprintf(&b, "\n- User's additional monthly affordability: %s%s", constants.CurrencySymbol, number(req.AdditionalAffordability))

	if loan.IsFloating() {
		b.WriteString("\n- Loan Type: Floating Rate")
		fmt.Fprintf(&b, "\n- Floating Rate Change: %s%% after %d years",
			number(loan.FloatingRateChangePercent), loan.FloatingRateChangeAfterYears)
	} else {
		b.WriteString("\n- Loan Type: Fixed Rate")
	}

	return b.String(), nil
}

// number renders x in its shortest exact decimal form, e.g. 3000000 or 7.25.
func number(x float64) string {
	return decimal.NewFromFloat(x).String()
}
