package suggestions

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/loan-schedule/pkg/loans"
)

// Failure causes. Each maps to its own message through UserMessage.
var (
	ErrMissingFinancials  = errors.New("annual salary and additional affordability are required")
	ErrDisabled           = errors.New("suggestion service is not configured")
	ErrBusy               = errors.New("a suggestion request is already in flight")
	ErrTimeout            = errors.New("suggestion service timed out")
	ErrNetwork            = errors.New("suggestion service unreachable")
	ErrUpstreamStatus     = errors.New("suggestion service returned an error status")
	ErrUnexpectedResponse = errors.New("suggestion service returned an unexpected response")
)

// UserMessage returns the text shown to a user when a suggestion fails.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingFinancials):
		return "Please fill in your salary and additional affordability to get suggestions."
	case errors.Is(err, loans.ErrInvalidParameters):
		return "Please correct the loan details before asking for suggestions."
	case errors.Is(err, ErrDisabled):
		return "Suggestions are unavailable because no API key is configured."
	case errors.Is(err, ErrBusy):
		return "Suggestions are already being generated. Please wait for them to finish."
	case errors.Is(err, ErrTimeout):
		return "Sorry, generating suggestions took too long. Please try again later."
	case errors.Is(err, ErrNetwork):
		return "Sorry, an error occurred while generating suggestions. This might be due to a network issue. Please try again later."
	case errors.Is(err, ErrUpstreamStatus):
		return "Sorry, the suggestion service could not handle the request. Please try again later."
	case errors.Is(err, ErrUnexpectedResponse):
		return "Sorry, I could not generate suggestions. The response format was unexpected."
	default:
		return "Sorry, I could not generate suggestions. Please try again."
	}
}

// timeoutError marks deadline failures with ErrTimeout and leaves other errors unchanged.
func timeoutError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
