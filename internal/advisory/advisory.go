// Package advisory wraps an optional language model that can be consulted for
// a second opinion. The model is never on the critical path: every failure is
// reported as ErrUnavailable and callers keep their rule-based result.
package advisory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DefaultTimeout bounds a single consultation.
const DefaultTimeout = 180 * time.Second

// ErrUnavailable is returned when the model timed out, failed, or replied with
// something unusable. Callers treat it as an abstention.
var ErrUnavailable = errors.New("advisory model unavailable")

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Advisor answers a chat prompt with free text.
type Advisor interface {
	Ask(ctx context.Context, messages []Message) (string, error)
}

// Consult asks a within timeout. A zero timeout means DefaultTimeout.
func Consult(ctx context.Context, a Advisor, timeout time.Duration, messages []Message) (string, error) {
	if a == nil {
		return "", fmt.Errorf("%w: no advisor configured", ErrUnavailable)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := a.Ask(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return reply, nil
}

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// DecodeJSON extracts the outermost JSON object from a free-text reply into v.
func DecodeJSON(reply string, v any) error {
	m := jsonObject.FindString(reply)
	if m == "" {
		return fmt.Errorf("%w: reply contains no JSON object", ErrUnavailable)
	}
	if err := json.Unmarshal([]byte(m), v); err != nil {
		return fmt.Errorf("%w: decode reply: %v", ErrUnavailable, err)
	}
	return nil
}
