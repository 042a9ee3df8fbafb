package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/logging"
	"github.com/iwvelando/loan-schedule/internal/suggestions"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("loan-schedule", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configLocation := flags.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flags.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flags.String("log-level", "", "log level override (debug, info, warn, error)")
	suggest := flags.Bool("suggest", false, "request prepayment suggestions for the loan")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": %q}\n", *configLocation, err.Error())
		return 1
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": %q}\n", err.Error())
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Error(err.Error(), zap.String("op", "main"))
		return 1
	}

	if err := conf.Validate(); err != nil {
		logger.Error("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 1
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	params, err := conf.Loan.ToParameters()
	if err != nil {
		logger.Error("invalid loan", zap.String("op", "main"), zap.Error(err))
		return 1
	}

	schedule, err := loans.NewAmortizationScheduleGenerator(logger).GenerateSchedule(params)
	if err != nil {
		logger.Error("failed to compute amortization schedule",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return 1
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(stdout, schedule)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(stdout, schedule.Records)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(stdout, schedule)
	}
	if err != nil {
		logger.Error("failed to write schedule", zap.String("op", "main"), zap.Error(err))
		return 1
	}

	if *suggest {
		// Machine-readable formats keep stdout for the schedule alone.
		dst := stdout
		if outputFormat != constants.OutputFormatPretty {
			dst = stderr
		}
		printSuggestions(context.Background(), logger, conf.Suggestions, params, dst)
	}

	return 0
}

// printSuggestions requests and prints suggestions. Failures are reported to
// the user but never change the exit code, the schedule is already written.
func printSuggestions(ctx context.Context, logger *zap.Logger, cfg config.SuggestionsConfig, params loans.LoanParameters, w io.Writer) {
	session := suggestions.NewSession()

	svc, err := suggestions.NewServiceFromConfig(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to set up suggestions", zap.String("op", "main"), zap.Error(err))
		session.Finish(suggestions.Result{State: suggestions.StateFailed, Message: suggestions.UserMessage(err), Err: err})
	} else {
		defer func() {
			_ = svc.Close()
		}()
		if session.Begin() {
			session.Finish(svc.Suggest(ctx, suggestions.Request{
				Loan:                    params,
				AnnualSalary:            cfg.AnnualSalary,
				AdditionalAffordability: cfg.AdditionalAffordability,
			}))
		}
	}

	result := session.Current()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Prepayment suggestions ---")
	if result.State == suggestions.StateSucceeded {
		fmt.Fprintln(w, result.Text)
		return
	}
	fmt.Fprintln(w, result.Message)
}
