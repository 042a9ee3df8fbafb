package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/loans"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test config",
			configPath: "../../test/test_config.yaml",
			wantError:  false,
		},
		{
			name:       "Example config",
			configPath: "../../config.yaml.example",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
				return
			}
			if err := config.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	expected := LoanConfig{
		Principal:                    3000000,
		AnnualRate:                   7,
		TermYears:                    20,
		Frequency:                    "monthly",
		RateType:                     "floating",
		FloatingRateChange:           0.5,
		FloatingRateChangeAfterYears: 5,
	}
	if config.Loan != expected {
		t.Errorf("Loan = %+v, expected %+v", config.Loan, expected)
	}

	if config.Suggestions.Timeout != 45*time.Second {
		t.Errorf("Expected suggestion timeout 45s, got %v", config.Suggestions.Timeout)
	}
	if config.Suggestions.AnnualSalary != 1800000 {
		t.Errorf("Expected annual salary 1800000, got %v", config.Suggestions.AnnualSalary)
	}
	if config.Suggestions.Cache.Backend != constants.CacheBackendMemory {
		t.Errorf("Expected memory cache, got %q", config.Suggestions.Cache.Backend)
	}
	if config.Suggestions.Cache.TTL != 12*time.Hour {
		t.Errorf("Expected cache TTL 12h, got %v", config.Suggestions.Cache.TTL)
	}
	if config.Logging.Level != "warn" || config.Logging.Format != "console" {
		t.Errorf("Unexpected logging config %+v", config.Logging)
	}
	if config.Output.Format != constants.OutputFormatCSV {
		t.Errorf("Expected output format csv, got %q", config.Output.Format)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfigurationFromReader(strings.NewReader(`
loan:
  principal: 500000
  annualRate: 8.5
  termYears: 15
`))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if config.Loan.Frequency != "monthly" {
		t.Errorf("Expected default frequency monthly, got %q", config.Loan.Frequency)
	}
	if config.Loan.RateType != "fixed" {
		t.Errorf("Expected default rate type fixed, got %q", config.Loan.RateType)
	}
	if config.Suggestions.Enabled {
		t.Errorf("Suggestions should be disabled by default")
	}
	if config.Suggestions.Model != constants.DefaultSuggestionModel {
		t.Errorf("Expected default model, got %q", config.Suggestions.Model)
	}
	if config.Suggestions.Timeout != constants.DefaultSuggestionTimeout {
		t.Errorf("Expected default timeout, got %v", config.Suggestions.Timeout)
	}
	if config.Suggestions.MaxInFlight != constants.DefaultSuggestionMaxInFlight {
		t.Errorf("Expected default max in flight, got %d", config.Suggestions.MaxInFlight)
	}
	if config.Suggestions.Cache.TTL != constants.DefaultSuggestionCacheTTL {
		t.Errorf("Expected default cache TTL, got %v", config.Suggestions.Cache.TTL)
	}
	if config.Logging.Level != "" || config.Output.Format != "" {
		t.Errorf("Logging level and output format should default to empty")
	}
}

func TestLoadConfigurationEnvironmentOverride(t *testing.T) {
	t.Setenv("LOAN_SCHEDULE_SUGGESTIONS_APIKEY", "secret-key")
	t.Setenv("LOAN_SCHEDULE_LOAN_PRINCIPAL", "2500000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "loan:\n  principal: 1000000\n  annualRate: 7\n  termYears: 20\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Suggestions.APIKey != "secret-key" {
		t.Errorf("Expected API key from environment, got %q", config.Suggestions.APIKey)
	}
	if config.Loan.Principal != 2500000 {
		t.Errorf("Expected principal from environment, got %v", config.Loan.Principal)
	}
}

func TestLoadConfigurationInvalidYAML(t *testing.T) {
	_, err := LoadConfigurationFromReader(strings.NewReader("loan: [unterminated"))
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Configuration {
		return Configuration{
			Loan: LoanConfig{Principal: 1000000, AnnualRate: 7, TermYears: 20, Frequency: "monthly", RateType: "fixed"},
		}
	}

	tests := []struct {
		name      string
		modify    func(c *Configuration)
		wantError string
	}{
		{"Valid", func(c *Configuration) {}, ""},
		{"JSON output", func(c *Configuration) { c.Output.Format = "json" }, ""},
		{"Bad output format", func(c *Configuration) { c.Output.Format = "xml" }, "output format"},
		{"Bad cache backend", func(c *Configuration) { c.Suggestions.Cache.Backend = "memcached" }, "cache backend"},
		{"Redis without address", func(c *Configuration) { c.Suggestions.Cache.Backend = "redis" }, "redisAddress"},
		{"Negative in-flight", func(c *Configuration) { c.Suggestions.MaxInFlight = -1 }, "maxInFlight"},
		{"Invalid loan", func(c *Configuration) { c.Loan.Principal = 0 }, "principal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			err := c.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Validate() error = %v, expected it to mention %q", err, tt.wantError)
			}
		})
	}
}

func TestToParameters(t *testing.T) {
	tests := []struct {
		name      string
		loan      LoanConfig
		expected  loans.LoanParameters
		wantField string
	}{
		{
			name: "Fixed monthly",
			loan: LoanConfig{Principal: 3000000, AnnualRate: 7, TermYears: 20, Frequency: "monthly", RateType: "fixed"},
			expected: loans.LoanParameters{
				Principal: 3000000, AnnualRatePercent: 7, TermYears: 20,
				Frequency: loans.Monthly, RateType: loans.RateFixed,
			},
		},
		{
			name: "Defaults to monthly fixed",
			loan: LoanConfig{Principal: 100000, AnnualRate: 5, TermYears: 5},
			expected: loans.LoanParameters{
				Principal: 100000, AnnualRatePercent: 5, TermYears: 5,
				Frequency: loans.Monthly, RateType: loans.RateFixed,
			},
		},
		{
			name: "Floating every three years",
			loan: LoanConfig{
				Principal: 100000, AnnualRate: 6, TermYears: 9, Frequency: "3years",
				RateType: "Floating", FloatingRateChange: -1, FloatingRateChangeAfterYears: 4,
			},
			expected: loans.LoanParameters{
				Principal: 100000, AnnualRatePercent: 6, TermYears: 9,
				Frequency: loans.EveryThree, RateType: loans.RateFloating,
				FloatingRateChangePercent: -1, FloatingRateChangeAfterYears: 4,
			},
		},
		{
			name:      "Unknown frequency",
			loan:      LoanConfig{Principal: 100000, AnnualRate: 5, TermYears: 5, Frequency: "weekly"},
			wantField: "frequency",
		},
		{
			name:      "Unknown rate type",
			loan:      LoanConfig{Principal: 100000, AnnualRate: 5, TermYears: 5, RateType: "variable"},
			wantField: "rateType",
		},
		{
			name:      "Negative rate",
			loan:      LoanConfig{Principal: 100000, AnnualRate: -5, TermYears: 5},
			wantField: "annualRate",
		},
		{
			name:      "Fractional periods",
			loan:      LoanConfig{Principal: 100000, AnnualRate: 5, TermYears: 7, Frequency: "5years"},
			wantField: "termYears",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.loan.ToParameters()
			if tt.wantField != "" {
				if !errors.Is(err, loans.ErrInvalidParameters) {
					t.Fatalf("ToParameters() error = %v, expected ErrInvalidParameters", err)
				}
				var verr *loans.ValidationError
				if !errors.As(err, &verr) || verr.Field != tt.wantField {
					t.Errorf("ToParameters() error = %v, expected field %q", err, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("ToParameters() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("ToParameters() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		config   Configuration
		expected []string
	}{
		{
			name: "No warnings",
			config: Configuration{
				Loan: LoanConfig{Principal: 1000000, AnnualRate: 7, TermYears: 20},
			},
			expected: nil,
		},
		{
			name: "Floating change after the term",
			config: Configuration{
				Loan: LoanConfig{
					Principal: 1000000, AnnualRate: 7, TermYears: 20, RateType: "floating",
					FloatingRateChange: 1, FloatingRateChangeAfterYears: 25,
				},
			},
			expected: []string{"falls outside the 20-year term"},
		},
		{
			name: "Floating settings on a fixed loan",
			config: Configuration{
				Loan: LoanConfig{Principal: 1000000, AnnualRate: 7, TermYears: 20, FloatingRateChange: 1},
			},
			expected: []string{"will be ignored"},
		},
		{
			name: "Suggestions missing key and financials",
			config: Configuration{
				Loan:        LoanConfig{Principal: 1000000, AnnualRate: 7, TermYears: 20},
				Suggestions: SuggestionsConfig{Enabled: true},
			},
			expected: []string{"no API key", "annual salary"},
		},
		{
			name: "Invalid loan produces no warnings",
			config: Configuration{
				Loan: LoanConfig{Principal: -1, AnnualRate: 7, TermYears: 20, FloatingRateChange: 1},
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.config.ValidateConfiguration()
			if len(warnings) != len(tt.expected) {
				t.Fatalf("ValidateConfiguration() = %v, expected %d warnings", warnings, len(tt.expected))
			}
			for i, fragment := range tt.expected {
				if !strings.Contains(warnings[i], fragment) {
					t.Errorf("warning %d = %q, expected it to contain %q", i, warnings[i], fragment)
				}
			}
		})
	}
}
