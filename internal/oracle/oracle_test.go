package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"bare", `{"a":1}`, `{"a":1}`, nil},
		{"commentary", "Sure! Here it is:\n```json\n{\"a\":1}\n```\nHope that helps.", `{"a":1}`, nil},
		{"nested spans first to last", `x {"a":{"b":2}} y {"c":3} z`, `{"a":{"b":2}} y {"c":3}`, nil},
		{"no braces", "I cannot help with that.", "", ErrNoObject},
		{"reversed", "} nothing {", "", ErrNoObject},
		{"empty", "", "", ErrNoObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractObject(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeObject(t *testing.T) {
	var v struct {
		EventName string `json:"eventName"`
	}
	if err := DecodeObject("Answer: {\"eventName\": \"Wedding\"} done", &v); err != nil {
		t.Fatalf("DecodeObject failed: %v", err)
	}
	if v.EventName != "Wedding" {
		t.Errorf("EventName = %q", v.EventName)
	}

	var w map[string]any
	if err := DecodeObject("{not json}", &w); err == nil {
		t.Error("expected error for malformed object")
	}
	if err := DecodeObject("plain text", &w); !errors.Is(err, ErrNoObject) {
		t.Errorf("expected ErrNoObject, got %v", err)
	}
}

func TestChatCompletionsClient_Complete(t *testing.T) {
	var got chatRequest
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-subscription-key")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	c := NewChatCompletionsClient(ChatConfig{BaseURL: srv.URL, APIKey: "secret", Model: "sarvam-m"})

	out, err := c.Complete(context.Background(), Prompt("Return ONLY valid JSON.", "data", 0.1, 800))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != `{"ok":true}` {
		t.Errorf("out = %q", out)
	}
	if gotKey != "secret" {
		t.Errorf("auth header = %q", gotKey)
	}
	if got.Model != "sarvam-m" || got.MaxTokens != 800 || got.Temperature != 0.1 {
		t.Errorf("unexpected request: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != RoleSystem || got.Messages[1].Content != "data" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestChatCompletionsClient_BearerAuth(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	c := NewChatCompletionsClient(ChatConfig{BaseURL: srv.URL, APIKey: "k", AuthHeader: "Authorization"})
	if _, err := c.Complete(context.Background(), Prompt("s", "u", 0, 10)); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if auth != "Bearer k" {
		t.Errorf("Authorization = %q", auth)
	}
}

func TestChatCompletionsClient_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   "upstream down",
			check: func(err error) bool {
				var se *StatusError
				return errors.As(err, &se) && se.StatusCode == http.StatusBadGateway && se.Body == "upstream down"
			},
		},
		{
			name:   "missing content path",
			status: http.StatusOK,
			body:   `{"choices":[]}`,
			check:  func(err error) bool { return errors.Is(err, ErrEmptyResponse) },
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>oops</html>`,
			check:  func(err error) bool { return errors.Is(err, ErrEmptyResponse) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewChatCompletionsClient(ChatConfig{BaseURL: srv.URL, APIKey: "k"})
			_, err := c.Complete(context.Background(), Prompt("s", "u", 0, 10))
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestChatCompletionsClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewChatCompletionsClient(ChatConfig{BaseURL: srv.URL, APIKey: "k"})
	if _, err := c.Complete(ctx, Prompt("s", "u", 0, 10)); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestOffline(t *testing.T) {
	if _, err := (Offline{}).Complete(context.Background(), Request{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		settings Settings
		check    func(TextOracle) bool
		wantErr  bool
	}{
		{"default provider without key", Settings{}, isOffline, false},
		{"none", Settings{Provider: "none", APIKey: "k"}, isOffline, false},
		{"sarvam", Settings{Provider: "Sarvam", APIKey: "k"}, func(o TextOracle) bool {
			c, ok := o.(*ChatCompletionsClient)
			return ok && c.cfg.Model == DefaultSarvamModel && c.cfg.BaseURL == DefaultChatURL
		}, false},
		{"anthropic", Settings{Provider: "anthropic", APIKey: "k"}, func(o TextOracle) bool {
			a, ok := o.(*AnthropicClient)
			return ok && a.model == DefaultAnthropicModel
		}, false},
		{"unknown", Settings{Provider: "carrier-pigeon", APIKey: "k"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := New(ctx, tt.settings)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if !tt.check(o) {
				t.Errorf("unexpected oracle %T", o)
			}
		})
	}
}

func isOffline(o TextOracle) bool {
	_, ok := o.(Offline)
	return ok
}

func TestSplit(t *testing.T) {
	system, rest := split([]Message{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "q"},
		{Role: RoleSystem, Content: "b"},
	})
	if system != "a\nb" {
		t.Errorf("system = %q", system)
	}
	if len(rest) != 1 || rest[0].Content != "q" {
		t.Errorf("rest = %+v", rest)
	}
}
