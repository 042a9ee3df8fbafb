// Package suggestions requests free-form prepayment advice for a loan from a
// text-generation service. Failures never affect the computed schedule; they
// surface as a failed Result carrying a user-facing message.
package suggestions

import (
	"context"
	"errors"
	"time"

	"github.com/iwvelando/loan-schedule/internal/cache"
	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle of one suggestion request.
type State string

const (
	StateIdle      State = "idle"
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Result is the outcome of a suggestion request. Text is set on success,
// Message on failure.
type Result struct {
	State   State  `json:"state"`
	Text    string `json:"suggestions,omitempty"`
	Message string `json:"error,omitempty"`
	Cached  bool   `json:"cached,omitempty"`
	Err     error  `json:"-"`
}

func succeeded(text string, cached bool) Result {
	return Result{State: StateSucceeded, Text: text, Cached: cached}
}

func failed(err error) Result {
	return Result{State: StateFailed, Message: UserMessage(err), Err: err}
}

// Options configures a Service.
type Options struct {
	// Generator is nil when suggestions are disabled.
	Generator   Generator
	Cache       cache.Cache
	Model       string
	Timeout     time.Duration
	MaxInFlight int
}

// Service runs suggestion requests with caching and bounded concurrency.
type Service struct {
	logger    *zap.Logger
	generator Generator
	cache     cache.Cache
	model     string
	timeout   time.Duration
	sem       *semaphore.Weighted
	group     singleflight.Group
}

// NewService creates a suggestion service.
func NewService(logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Cache == nil {
		opts.Cache = cache.Nop{}
	}
	if opts.Model == "" {
		opts.Model = constants.DefaultSuggestionModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultSuggestionTimeout
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = constants.DefaultSuggestionMaxInFlight
	}

	return &Service{
		logger:    logger,
		generator: opts.Generator,
		cache:     opts.Cache,
		model:     opts.Model,
		timeout:   opts.Timeout,
		sem:       semaphore.NewWeighted(int64(opts.MaxInFlight)),
	}
}

// NewServiceFromConfig wires a Gemini generator and the configured cache. A
// disabled or keyless configuration yields a service whose requests fail with
// ErrDisabled.
func NewServiceFromConfig(ctx context.Context, logger *zap.Logger, cfg config.SuggestionsConfig) (*Service, error) {
	c, err := cache.New(logger, cfg.Cache)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Cache:       c,
		Model:       cfg.Model,
		Timeout:     cfg.Timeout,
		MaxInFlight: cfg.MaxInFlight,
	}

	if cfg.Enabled && cfg.APIKey != "" {
		generator, err := NewGeminiGenerator(ctx, GeminiOptions{
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Endpoint: cfg.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		opts.Generator = generator
	}

	return NewService(logger, opts), nil
}

// CheckCache reports whether the suggestion cache can reach its store.
func (s *Service) CheckCache(ctx context.Context) error {
	return cache.Ping(ctx, s.cache)
}

// Close releases the cache connections held by the service.
func (s *Service) Close() error {
	return cache.Close(s.cache)
}

// Enabled reports whether requests can reach a generator.
func (s *Service) Enabled() bool {
	return s.generator != nil
}

// Suggest builds the prompt for req and returns generated advice. Identical
// concurrent prompts share one upstream call; other requests beyond the
// in-flight limit fail with ErrBusy.
func (s *Service) Suggest(ctx context.Context, req Request) Result {
	prompt, err := BuildPrompt(req)
	if err != nil {
		s.logger.Debug("suggestion request rejected",
			zap.String("op", "suggestions.Suggest"),
			zap.Error(err),
		)
		return failed(err)
	}

	if s.generator == nil {
		return failed(ErrDisabled)
	}

	key := cache.Key(s.model, prompt)
	if text, ok := s.cache.Get(ctx, key); ok {
		s.logger.Debug("suggestion served from cache",
			zap.String("op", "suggestions.Suggest"),
			zap.String("key", key),
		)
		return succeeded(text, true)
	}

	// The shared call must not die with whichever caller started it.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.generate(context.WithoutCancel(ctx), key, prompt)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		err := timeoutError(ctx.Err())
		s.logger.Debug("suggestion request abandoned",
			zap.String("op", "suggestions.Suggest"),
			zap.Error(err),
		)
		return failed(err)
	}

	if res.Err != nil {
		level := s.logger.Warn
		if errors.Is(res.Err, ErrBusy) {
			level = s.logger.Info
		}
		level("suggestion request failed",
			zap.String("op", "suggestions.Suggest"),
			zap.Bool("shared", res.Shared),
			zap.Error(res.Err),
		)
		return failed(res.Err)
	}

	return succeeded(res.Val.(string), false)
}

func (s *Service) generate(ctx context.Context, key, prompt string) (string, error) {
	if !s.sem.TryAcquire(1) {
		return "", ErrBusy
	}
	defer s.sem.Release(1)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", timeoutError(err)
	}

	s.logger.Info("suggestion generated",
		zap.String("op", "suggestions.Suggest"),
		zap.String("model", s.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("length", len(text)),
	)

	if err := s.cache.Set(ctx, key, text); err != nil {
		s.logger.Warn("failed to cache suggestion",
			zap.String("op", "suggestions.Suggest"),
			zap.Error(err),
		)
	}
	return text, nil
}
