package suggestions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Generator turns a prompt into free-form text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiOptions configures a GeminiGenerator.
type GeminiOptions struct {
	APIKey string
	Model  string
	// Endpoint overrides the API base URL, e.g. for a proxy.
	Endpoint string
	// HTTPClient replaces the default transport. The API key is not applied to it.
	HTTPClient *http.Client
}

// GeminiGenerator calls the Generative Language generateContent method.
type GeminiGenerator struct {
	service *generativelanguage.Service
	model   string
}

// NewGeminiGenerator creates a generator for the configured model.
func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	model := opts.Model
	if model == "" {
		model = constants.DefaultSuggestionModel
	}

	var clientOptions []option.ClientOption
	if opts.HTTPClient != nil {
		clientOptions = append(clientOptions, option.WithHTTPClient(opts.HTTPClient))
	} else {
		if opts.APIKey == "" {
			return nil, ErrDisabled
		}
		clientOptions = append(clientOptions, option.WithAPIKey(opts.APIKey))
	}
	if opts.Endpoint != "" {
		endpoint := opts.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	service, err := generativelanguage.NewService(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("create generative language service: %w", err)
	}

	return &GeminiGenerator{
		service: service,
		model:   strings.TrimPrefix(model, "models/"),
	}, nil
}

// Model returns the model name without its resource prefix.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate sends prompt as a single user turn and returns the first text part
// of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{
				Role:  "user",
				Parts: []*generativelanguage.Part{{Text: prompt}},
			},
		},
	}

	resp, err := g.service.Models.GenerateContent("models/"+g.model, req).Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0].Text == "" {
		return "", ErrUnexpectedResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d", ErrUpstreamStatus, apiErr.Code)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
