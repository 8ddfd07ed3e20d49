package chat

import (
	"strings"

	"github.com/andrew/rag-webapp/pkg/models"
	"github.com/pkg/errors"
)

// Mode selects whether prior exchanges are kept
type Mode string

const (
	// ModeConversation accumulates every exchange into the transcript
	ModeConversation Mode = "conversation"
	// ModeSingle keeps only the latest question and answer
	ModeSingle Mode = "single"
)

// ParseMode accepts the flag spellings of a Mode
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "conversation", "chat":
		return ModeConversation, nil
	case "single", "qa":
		return ModeSingle, nil
	}
	return "", errors.Errorf("unknown mode %q (expected conversation or single)", s)
}

// State is everything a front end renders for one session.
// Controller methods take a State and return the updated copy.
type State struct {
	Transcript []models.Message `json:"transcript"`
	// Answer holds the latest answer in ModeSingle
	Answer   string `json:"answer"`
	Draft    string `json:"draft"`
	InFlight bool   `json:"in_flight"`
	Error    string `json:"error"`
}

// CanSubmit reports whether the submit control should be enabled
func (s State) CanSubmit() bool {
	return !s.InFlight && strings.TrimSpace(s.Draft) != ""
}

// appendMessage copies the transcript so earlier State values never observe the new entry
func (s State) appendMessage(m models.Message) State {
	transcript := make([]models.Message, len(s.Transcript), len(s.Transcript)+1)
	copy(transcript, s.Transcript)
	s.Transcript = append(transcript, m)
	return s
}
