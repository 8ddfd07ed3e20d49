package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client is the interface for sending a question to the answering webhook
type Client interface {
	// Ask posts the question and returns the text to display for the answer
	Ask(ctx context.Context, question string) (string, error)
	// URL returns the configured destination, empty when unconfigured
	URL() string
}

// Request is the JSON body posted to the webhook
type Request struct {
	Question string `json:"question"`
}

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying transport client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each exchange. Zero keeps the transport default, which never times out.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		// copy so a shared client such as http.DefaultClient is left untouched
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger attaches a logger for dispatch and resolution events
func WithLogger(logger zerolog.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// NewClient creates a client for the given webhook URL. An empty URL is allowed and
// reported as ErrNotConfigured on every Ask.
func NewClient(url string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		url:        url,
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
