package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"

	"formalyze/internal/config"
	"formalyze/internal/logger"
)

// ErrLLMDisabled is returned when no API key is configured
var ErrLLMDisabled = errors.New("llm is not configured")

var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// ChatModel is the completion surface the local agent depends on
type ChatModel interface {
	IsEnabled() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLMClient calls an OpenAI-compatible chat completions endpoint
type LLMClient struct {
	config      config.LLMConfig
	http        *resty.Client
	backoffBase time.Duration
	log         logger.Logger
}

// NewLLMClient creates a new chat completions client
func NewLLMClient(cfg config.LLMConfig) *LLMClient {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &LLMClient{
		config:      cfg,
		http:        client,
		backoffBase: 500 * time.Millisecond,
		log:         logger.With("component", "llm_client", "model", cfg.Model),
	}
}

// IsEnabled returns true if an API key is configured
func (c *LLMClient) IsEnabled() bool {
	return c.config.IsEnabled()
}

// Complete sends a single user prompt and returns the reply text.
// Rate limits and server errors are retried with exponential backoff.
func (c *LLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.IsEnabled() {
		return "", ErrLLMDisabled
	}

	body := map[string]interface{}{
		"model": c.config.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0.7,
	}

	maxRetries := uint64(0)
	if c.config.MaxRetries > 0 {
		maxRetries = uint64(c.config.MaxRetries)
	}
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(c.backoffBase))

	var content string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(body).
			Post(c.config.ChatEndpoint())
		if err != nil {
			c.log.Warn("llm request failed", "error", err)
			return retry.RetryableError(err)
		}

		status := resp.StatusCode()
		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			c.log.Warn("llm request throttled or failed", "status", status)
			return retry.RetryableError(fmt.Errorf("llm api returned %d", status))
		}
		if resp.IsError() {
			return fmt.Errorf("llm api returned %d: %s", status, truncate(resp.String(), 200))
		}

		reply := gjson.GetBytes(resp.Body(), "choices.0.message.content")
		if !reply.Exists() {
			return errors.New("llm response has no message content")
		}
		content = reply.String()
		return nil
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

// ExtractJSONArray returns the outermost JSON array embedded in model output
func ExtractJSONArray(text string) (string, bool) {
	match := jsonArrayPattern.FindString(text)
	if match == "" || !gjson.Valid(match) {
		trimmed := strings.TrimSpace(text)
		if gjson.Valid(trimmed) && gjson.Parse(trimmed).IsArray() {
			return trimmed, true
		}
		return "", false
	}
	return match, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
