// Package config defines the data structures related to configuration and
// includes functions for loading, parsing and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for loan-schedule.
type Configuration struct {
	Loan        LoanConfig        `yaml:"loan"`
	Suggestions SuggestionsConfig `yaml:"suggestions,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// SuggestionsConfig configures the prepayment suggestion service.
type SuggestionsConfig struct {
	Enabled     bool          `yaml:"enabled"`
	APIKey      string        `yaml:"apiKey,omitempty" mapstructure:"apikey"`
	Model       string        `yaml:"model,omitempty"`
	Endpoint    string        `yaml:"endpoint,omitempty"` // empty uses the public API
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	MaxInFlight int           `yaml:"maxInFlight,omitempty"`

	// Borrower financials sent along with the loan. Both must be positive
	// before a suggestion can be requested.
	AnnualSalary            float64 `yaml:"annualSalary,omitempty"`
	AdditionalAffordability float64 `yaml:"additionalAffordability,omitempty"`

	Cache CacheConfig `yaml:"cache,omitempty"`
}

// CacheConfig selects where generated suggestions are kept.
type CacheConfig struct {
	Backend       string        `yaml:"backend,omitempty"` // none, memory, redis
	TTL           time.Duration `yaml:"ttl,omitempty"`
	RedisAddress  string        `yaml:"redisAddress,omitempty"`
	RedisPassword string        `yaml:"redisPassword,omitempty"`
	RedisDB       int           `yaml:"redisDB,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key gets a default so AutomaticEnv can override keys the file omits.
	v.SetDefault("loan.principal", 0)
	v.SetDefault("loan.annualrate", 0)
	v.SetDefault("loan.termyears", 0)
	v.SetDefault("loan.frequency", "monthly")
	v.SetDefault("loan.ratetype", "fixed")
	v.SetDefault("loan.floatingratechange", 0)
	v.SetDefault("loan.floatingratechangeafteryears", 0)
	v.SetDefault("suggestions.enabled", false)
	v.SetDefault("suggestions.apikey", "")
	v.SetDefault("suggestions.model", constants.DefaultSuggestionModel)
	v.SetDefault("suggestions.endpoint", "")
	v.SetDefault("suggestions.timeout", constants.DefaultSuggestionTimeout)
	v.SetDefault("suggestions.maxinflight", constants.DefaultSuggestionMaxInFlight)
	v.SetDefault("suggestions.annualsalary", 0)
	v.SetDefault("suggestions.additionalaffordability", 0)
	v.SetDefault("suggestions.cache.backend", constants.CacheBackendMemory)
	v.SetDefault("suggestions.cache.ttl", constants.DefaultSuggestionCacheTTL)
	v.SetDefault("suggestions.cache.redisaddress", "")
	v.SetDefault("suggestions.cache.redispassword", "")
	v.SetDefault("suggestions.cache.redisdb", 0)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputfile", "")
	v.SetDefault("output.format", "")
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with LOAN_SCHEDULE_
// override file values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// Validate rejects configuration values no command can run with.
func (c *Configuration) Validate() error {
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return err
		}
	}
	if err := validation.ValidateCacheBackend(c.Suggestions.Cache.Backend); err != nil {
		return err
	}
	if c.Suggestions.Cache.Backend == constants.CacheBackendRedis && c.Suggestions.Cache.RedisAddress == "" {
		return fmt.Errorf("redis cache backend requires suggestions.cache.redisAddress")
	}
	if c.Suggestions.MaxInFlight < 0 {
		return fmt.Errorf("suggestions.maxInFlight must not be negative, got %d", c.Suggestions.MaxInFlight)
	}
	if _, err := c.Loan.ToParameters(); err != nil {
		return err
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if params, err := c.Loan.ToParameters(); err == nil {
		warnings = append(warnings, validation.FloatingRateWarnings(params)...)
	}

	if c.Suggestions.Enabled {
		if c.Suggestions.APIKey == "" {
			warnings = append(warnings,
				"suggestions are enabled but no API key is set - suggestion requests will fail")
		}
		if c.Suggestions.AnnualSalary <= 0 || c.Suggestions.AdditionalAffordability <= 0 {
			warnings = append(warnings,
				"suggestions are enabled but annual salary or additional affordability is not set")
		}
	}

	return warnings
}
