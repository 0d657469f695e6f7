package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/jcommit/jcommit/internal/pkg/errors"
	"github.com/jcommit/jcommit/internal/pkg/security"
	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the default API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is the default model id.
	DefaultModel = "gpt-4o-mini"

	// Temperature is the sampling temperature of every request.
	Temperature = 0.2
)

// ServiceConfig is the immutable configuration of a Service. Zero fields
// fall back to built-in defaults.
type ServiceConfig struct {
	BaseURL      string
	Model        string
	APIKey       string
	Flavor       ProviderFlavor
	APIVersion   string
	SystemPrompt string

	// HTTPClient is used for requests. It must not carry a Timeout, since
	// that would also cut off a long-running stream.
	HTTPClient *http.Client
}

// Service sends conversations to one resolved completion endpoint.
type Service struct {
	cfg      ServiceConfig
	endpoint string
	client   *http.Client
}

// NewService creates a Service, resolving its endpoint once.
func NewService(cfg ServiceConfig) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Flavor == FlavorAzure && cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAzureAPIVersion
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        2,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}

	return &Service{
		cfg:      cfg,
		endpoint: ResolveEndpoint(cfg.BaseURL, cfg.Flavor, cfg.Model, cfg.APIVersion),
		client:   client,
	}
}

// Endpoint returns the resolved request URL.
func (s *Service) Endpoint() string {
	return s.endpoint
}

// Model returns the model id sent with every request.
func (s *Service) Model() string {
	return s.cfg.Model
}

// BuildConversation assembles a conversation using the configured system prompt.
func (s *Service) BuildConversation(diff, hint string, includeBody bool) Conversation {
	return AssemblePrompt(PromptOptions{
		SystemPrompt: s.cfg.SystemPrompt,
		Diff:         diff,
		Hint:         hint,
		IncludeBody:  includeBody,
	})
}

// Stream sends the conversation in a single request and returns the
// response as a fragment stream. A non-success status fails with a
// transport error carrying the response body; nothing is retried.
func (s *Service) Stream(ctx context.Context, conv Conversation) (*CompletionStream, error) {
	payload, err := json.Marshal(openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    conv,
		Temperature: Temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	apperrors.LogAPIRequest(security.SanitizeForLogging(s.endpoint), s.cfg.Model, len(conv), conv.ContentLength())

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewNetworkError(err)
	}
	apperrors.LogAPIResponse(resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, apperrors.NewTransportError(resp.StatusCode, string(body))
	}

	return newCompletionStream(ctx, resp.Body), nil
}
