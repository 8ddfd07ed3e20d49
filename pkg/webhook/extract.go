package webhook

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// answerFields are checked in order; the first non-empty string wins
var answerFields = []string{"answer", "text"}

// ExtractAnswer normalizes a webhook response body into display text.
//
// Workflow engines commonly wrap their output in an array, so an array body is reduced to
// its first element. From that result the "answer" field is used, then "text", and when
// neither holds a non-empty string the whole result is returned as indented JSON.
func ExtractAnswer(body []byte) (string, error) {
	result, err := effectiveResult(body)
	if err != nil {
		return "", err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(result, &fields); err == nil {
		for _, name := range answerFields {
			if s := stringField(fields, name); s != "" {
				return s, nil
			}
		}
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		return "", errors.Wrap(err, "failed to format response")
	}
	return pretty.String(), nil
}

func effectiveResult(body []byte) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, errors.Wrap(err, "failed to parse response")
		}
		if len(items) == 0 {
			return nil, ErrEmptyResponse
		}
		raw = bytes.TrimSpace(items[0])
	}

	if bytes.Equal(raw, []byte("null")) {
		return nil, ErrEmptyResponse
	}
	return raw, nil
}

func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
