/*
Package completion invokes an OpenAI-compatible chat completion endpoint.

Calls are single-shot and non-streaming. Every failure is reported as a *ProviderError
carrying the provider's own message so callers can surface it unchanged.
*/
package completion

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"groundchat/internal/app/prompt"
	"groundchat/internal/pkg/logx"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"
	DefaultTimeout = 60 * time.Second
)

// Config selects the endpoint and model.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// ProviderError is any failure to obtain a completion.
type ProviderError struct {
	// Message is the provider's error text, passed through to the client.
	Message string

	// StatusCode is the upstream HTTP status, zero for transport failures.
	StatusCode int

	Err error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.Err }

// Client calls the completion endpoint.
type Client struct {
	api     *openai.Client
	model   string
	observe func(time.Duration, error)
	logger  zerolog.Logger
}

type Option func(*Client)

// WithObserver registers fn to receive the duration and outcome of every call.
func WithObserver(fn func(time.Duration, error)) Option {
	return func(c *Client) { c.observe = fn }
}

// NewClient builds a Client from cfg, filling unset fields with the DeepSeek defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &Client{
		api:    openai.NewClientWithConfig(apiCfg),
		model:  cfg.Model,
		logger: logx.Component("completion"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends messages and returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, messages []prompt.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAI(messages),
		Stream:   false,
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	elapsed := time.Since(start)

	if err == nil && len(resp.Choices) == 0 {
		err = &ProviderError{Message: "completion provider returned no choices"}
	}
	if err != nil {
		perr := asProviderError(err)
		c.logger.Error().Err(perr.Err).Int("status", perr.StatusCode).Dur("elapsed", elapsed).Msg("completion failed")
		c.report(elapsed, perr)
		return "", perr
	}

	c.logger.Debug().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", elapsed).
		Msg("completion received")
	c.report(elapsed, nil)

	return resp.Choices[0].Message.Content, nil
}

func (c *Client) report(d time.Duration, err error) {
	if c.observe != nil {
		c.observe(d, err)
	}
}

func toOpenAI(messages []prompt.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == prompt.RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func asProviderError(err error) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}

	out := &ProviderError{Message: err.Error(), Err: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		out.StatusCode = apiErr.HTTPStatusCode
		if apiErr.Message != "" {
			out.Message = apiErr.Message
		}
	case errors.As(err, &reqErr):
		out.StatusCode = reqErr.HTTPStatusCode
	}

	if out.Message == "" {
		out.Message = "completion provider error"
	}
	return out
}
