package webhook

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	// NotConfiguredMessage is shown when no webhook URL was supplied
	NotConfiguredMessage = "Webhook URL is not configured. Set WEBHOOK_URL in .env.local or pass --webhook-url."
	// FallbackMessage is shown when a failure carries no message of its own
	FallbackMessage = "Something went wrong while calling the webhook."
)

// ErrNotConfigured is returned before any network attempt when the URL is empty
var ErrNotConfigured = errors.New(NotConfiguredMessage)

// ErrEmptyResponse is returned when the webhook answers with null or an empty array
var ErrEmptyResponse = errors.New("webhook returned an empty response")

// StatusError reports a response whose status is outside 2xx
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error: %d - %s", e.Code, e.Status)
}

// Describe turns an Ask failure into the single line shown in the error banner
func Describe(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotConfigured) {
		return NotConfiguredMessage
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Error()
	}

	msg := errors.Cause(err).Error()
	if strings.TrimSpace(msg) == "" {
		return FallbackMessage
	}
	return msg
}
