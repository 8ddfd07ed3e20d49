package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// HTTPClient posts questions to a webhook over HTTP
type HTTPClient struct {
	url        string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ Client = (*HTTPClient)(nil)

// URL returns the configured webhook URL
func (c *HTTPClient) URL() string {
	return strings.TrimSpace(c.url)
}

// Ask sends exactly one POST carrying the question as typed and extracts the answer text
func (c *HTTPClient) Ask(ctx context.Context, question string) (string, error) {
	url := c.URL()
	if url == "" {
		return "", ErrNotConfigured
	}

	// Serialize the request body without HTML escaping, the webhook sees the text as typed
	var reqBody bytes.Buffer
	enc := json.NewEncoder(&reqBody)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Request{Question: question}); err != nil {
		return "", errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &reqBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	c.logger.Debug().Str("url", url).Int("question_len", len(question)).Msg("dispatching question")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("webhook request failed")
		return "", errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("webhook rejected question")
		return "", &StatusError{Code: resp.StatusCode, Status: statusText(resp)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response")
	}

	answer, err := ExtractAnswer(body)
	if err != nil {
		return "", err
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Int("answer_len", len(answer)).
		Dur("elapsed", time.Since(start)).
		Msg("webhook answered")
	return answer, nil
}

// statusText returns the reason phrase the server sent, falling back to the standard one
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
