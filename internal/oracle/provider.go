package oracle

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by New.
const (
	ProviderSarvam    = "sarvam"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// DefaultSarvamModel is the chat-completions model used by default.
const DefaultSarvamModel = "sarvam-m"

// Settings selects and configures a provider.
type Settings struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// New builds the TextOracle named by s.Provider. A provider without an API
// key is replaced by Offline so that reports are still produced.
func New(ctx context.Context, s Settings) (TextOracle, error) {
	provider := strings.ToLower(strings.TrimSpace(s.Provider))
	if provider == "" {
		provider = ProviderSarvam
	}
	switch provider {
	case ProviderSarvam, ProviderGemini, ProviderAnthropic:
		if s.APIKey == "" {
			return Offline{}, nil
		}
	case ProviderNone:
		return Offline{}, nil
	default:
		return nil, fmt.Errorf("oracle.New: unknown provider %q", s.Provider)
	}

	switch provider {
	case ProviderSarvam:
		model := s.Model
		if model == "" {
			model = DefaultSarvamModel
		}
		return NewChatCompletionsClient(ChatConfig{
			BaseURL: s.BaseURL,
			APIKey:  s.APIKey,
			Model:   model,
		}), nil
	case ProviderGemini:
		g, err := NewGeminiClient(ctx, s.APIKey, s.Model, s.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("oracle.New: %w", err)
		}
		return g, nil
	default:
		return NewAnthropicClient(s.APIKey, s.Model, s.BaseURL), nil
	}
}
