package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"leadscout/internal/metrics"
)

const (
	defaultBaseURL = "https://ai.gateway.lovable.dev"
	defaultModel   = "google/gemini-3-flash-preview"
)

var (
	ErrNotConfigured  = errors.New("AI service not configured")
	ErrRateLimited    = errors.New("AI gateway rate limited")
	ErrQuotaExhausted = errors.New("AI gateway credits exhausted")
	ErrUpstream       = errors.New("AI gateway request failed")
	ErrEmptyResponse  = errors.New("AI gateway returned no content")
)

// StatusError is returned for a non-2xx gateway response. It unwraps to the
// sentinel matching its status code.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("AI gateway returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired:
		return ErrQuotaExhausted
	default:
		return ErrUpstream
	}
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Config configures the gateway client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// AIClient talks to an OpenAI compatible chat completions gateway.
type AIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewAIClient creates and returns a new AIClient. A missing key is not an
// error here; calls fail with ErrNotConfigured instead.
func NewAIClient(cfg Config, log logrus.FieldLogger) *AIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &AIClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// Configured reports whether an API key is present.
func (c *AIClient) Configured() bool {
	return c.apiKey != ""
}

// Close releases idle connections held by the client.
func (c *AIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Complete sends one chat completion and returns the first choice's content.
// purpose only labels logs and metrics.
func (c *AIClient) Complete(ctx context.Context, purpose string, messages []Message, temperature float64) (string, error) {
	content, err := c.complete(ctx, messages, temperature)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrRateLimited):
		outcome = "rate_limited"
	case errors.Is(err, ErrQuotaExhausted):
		outcome = "quota_exhausted"
	case errors.Is(err, ErrNotConfigured):
		outcome = "not_configured"
	case err != nil:
		outcome = "error"
	}
	metrics.AIRequests.WithLabelValues(purpose, outcome).Inc()
	if err != nil {
		c.log.WithError(err).WithField("purpose", purpose).Warn("AI gateway call failed")
	}
	return content, err
}

func (c *AIClient) complete(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Temperature: temperature})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode chat response: %v", ErrUpstream, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
