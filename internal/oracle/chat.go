package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dvloznov/statement-insights/internal/logger"
	"github.com/tidwall/gjson"
)

// DefaultChatURL is the Sarvam chat-completions endpoint.
const DefaultChatURL = "https://api.sarvam.ai/v1/chat/completions"

// contentPath is where chat-completions responses carry the answer.
const contentPath = "choices.0.message.content"

// ChatConfig configures a ChatCompletionsClient.
type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string

	// AuthHeader names the header that carries APIKey. Sarvam uses
	// "api-subscription-key"; OpenAI-compatible services use
	// "Authorization" and get a Bearer prefix.
	AuthHeader string

	HTTPClient *http.Client
}

// ChatCompletionsClient talks to an OpenAI-style chat completions endpoint.
type ChatCompletionsClient struct {
	cfg ChatConfig
}

// NewChatCompletionsClient fills defaults for unset fields.
func NewChatCompletionsClient(cfg ChatConfig) *ChatCompletionsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultChatURL
	}
	if cfg.AuthHeader == "" {
		cfg.AuthHeader = "api-subscription-key"
	}
	if cfg.HTTPClient == nil {
		// Per-call deadlines come from the caller's context.
		cfg.HTTPClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &ChatCompletionsClient{cfg: cfg}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Complete posts the request and returns the first choice's message content.
func (c *ChatCompletionsClient) Complete(ctx context.Context, req Request) (string, error) {
	log := logger.FromContext(ctx)

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ChatCompletionsClient.Complete: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ChatCompletionsClient.Complete: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		if strings.EqualFold(c.cfg.AuthHeader, "Authorization") {
			httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		} else {
			httpReq.Header.Set(c.cfg.AuthHeader, c.cfg.APIKey)
		}
	}

	start := time.Now()
	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ChatCompletionsClient.Complete: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("ChatCompletionsClient.Complete: reading response: %w", err)
	}

	log.Debug().
		Str("model", model).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("chat completion finished")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(payload), 512)}
	}

	content := gjson.GetBytes(payload, contentPath)
	if !content.Exists() || strings.TrimSpace(content.String()) == "" {
		return "", ErrEmptyResponse
	}
	return content.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
