// Package oracle is the narrow boundary to remote text-generation services.
// Callers treat every implementation as unreliable: any call may fail, time
// out or return text that is not the structure that was asked for.
package oracle

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned by the offline oracle.
	ErrUnavailable = errors.New("oracle: unavailable")

	// ErrEmptyResponse means the provider answered without any text.
	ErrEmptyResponse = errors.New("oracle: empty response")
)

// Role of a prompt message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry of a prompt conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request. An empty Model selects the
// client's configured model.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Prompt builds the common system + user request.
func Prompt(system, user string, temperature float64, maxTokens int) Request {
	return Request{
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// TextOracle completes a prompt into free-form text.
type TextOracle interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// StatusError is returned when the provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("oracle: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Offline never reaches a provider.
type Offline struct{}

func (Offline) Complete(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}

// split separates system messages from the rest, for providers that take
// the system prompt out of band.
func split(msgs []Message) (system string, user []Message) {
	for _, m := range msgs {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		user = append(user, m)
	}
	return system, user
}
