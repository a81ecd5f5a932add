package oracle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoObject means the text holds no brace-delimited span.
var ErrNoObject = errors.New("oracle: no JSON object in response")

// ExtractObject returns the span from the first '{' to the last '}' of raw.
// Commentary or code fences around the object are discarded.
func ExtractObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", ErrNoObject
	}
	return raw[start : end+1], nil
}

// DecodeObject is the best-effort structured decode shared by every caller
// that asks a model for JSON. On error v may be partially filled and should
// be discarded.
func DecodeObject(raw string, v any) error {
	obj, err := ExtractObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("DecodeObject: %w", err)
	}
	return nil
}
