package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andrew/rag-webapp/pkg/models"
	"github.com/andrew/rag-webapp/pkg/webhook"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeClient answers every question with a canned reply and records what it was asked
type fakeClient struct {
	mu        sync.Mutex
	url       string
	questions []string
	answer    func(q string) (string, error)
	release   chan struct{}
}

func (f *fakeClient) Ask(ctx context.Context, question string) (string, error) {
	f.mu.Lock()
	f.questions = append(f.questions, question)
	f.mu.Unlock()
	if f.release != nil {
		<-f.release
	}
	if f.answer == nil {
		return "answer to " + question, nil
	}
	return f.answer(question)
}

func (f *fakeClient) URL() string { return f.url }

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.questions)
}

func newTestController(client webhook.Client, mode Mode) *Controller {
	return NewController(client, mode, zerolog.Nop())
}

func TestSubmit_BlankDraftIsNoOp(t *testing.T) {
	for _, mode := range []Mode{ModeConversation, ModeSingle} {
		client := &fakeClient{url: "http://hook"}
		c := newTestController(client, mode)
		prior := State{Error: "previous failure", Transcript: []models.Message{models.NewMessage(models.RoleUser, "hi")}}

		for _, draft := range []string{"", " ", "\t\n  ", "\n"} {
			prior.Draft = draft
			next := c.Submit(context.Background(), prior)
			require.Equal(t, prior, next, "mode %s draft %q", mode, draft)
		}
		require.Equal(t, 0, client.calls())
	}
}

func TestSubmit_InFlightIsNoOp(t *testing.T) {
	client := &fakeClient{url: "http://hook"}
	c := newTestController(client, ModeConversation)

	s := State{Draft: "again?", InFlight: true}
	next, ex, ok := c.Begin(s)
	require.False(t, ok)
	require.Nil(t, ex)
	require.Equal(t, s, next)

	require.Equal(t, s, c.Submit(context.Background(), s))
	require.Equal(t, 0, client.calls())
}

func TestBegin_ConversationAppendsTrimmedUserMessage(t *testing.T) {
	c := newTestController(&fakeClient{url: "http://hook"}, ModeConversation)

	next, ex, ok := c.Begin(State{Draft: "  what is RAG?\n", Error: "old"})
	require.True(t, ok)
	require.Equal(t, "  what is RAG?\n", ex.Question)
	require.True(t, next.InFlight)
	require.Empty(t, next.Error)
	require.Empty(t, next.Draft)
	require.Len(t, next.Transcript, 1)
	require.Equal(t, models.RoleUser, next.Transcript[0].Role)
	require.Equal(t, "what is RAG?", next.Transcript[0].Text)
	require.NotEmpty(t, next.Transcript[0].ID)
}

func TestBegin_SingleKeepsDraftAndClearsAnswer(t *testing.T) {
	c := newTestController(&fakeClient{url: "http://hook"}, ModeSingle)

	next, ex, ok := c.Begin(State{Draft: "what is RAG?", Answer: "previous answer", Error: "old"})
	require.True(t, ok)
	require.Equal(t, "what is RAG?", ex.Question)
	require.Equal(t, "what is RAG?", next.Draft)
	require.Empty(t, next.Answer)
	require.Empty(t, next.Error)
	require.Empty(t, next.Transcript)
	require.True(t, next.InFlight)
}

func TestSubmit_ConversationAlternatesRoles(t *testing.T) {
	client := &fakeClient{url: "http://hook"}
	c := newTestController(client, ModeConversation)

	const n = 4
	s := State{}
	for i := 0; i < n; i++ {
		s.Draft = fmt.Sprintf("question %d", i)
		s = c.Submit(context.Background(), s)
		require.False(t, s.InFlight)
		require.Empty(t, s.Error)
	}

	require.Len(t, s.Transcript, 2*n)
	ids := map[string]bool{}
	for i, m := range s.Transcript {
		ids[m.ID] = true
		if i%2 == 0 {
			require.Equal(t, models.RoleUser, m.Role)
			require.Equal(t, fmt.Sprintf("question %d", i/2), m.Text)
		} else {
			require.Equal(t, models.RoleAssistant, m.Role)
			require.Equal(t, fmt.Sprintf("answer to question %d", i/2), m.Text)
		}
	}
	require.Len(t, ids, 2*n)
	require.Equal(t, n, client.calls())
}

func TestSubmit_SingleReplacesAnswer(t *testing.T) {
	c := newTestController(&fakeClient{url: "http://hook"}, ModeSingle)

	s := c.Submit(context.Background(), State{Draft: "one"})
	require.Equal(t, "answer to one", s.Answer)
	require.Equal(t, "one", s.Draft)

	s.Draft = "two"
	s = c.Submit(context.Background(), s)
	require.Equal(t, "answer to two", s.Answer)
	require.Empty(t, s.Transcript)
	require.False(t, s.InFlight)
}

func TestSubmit_FailureSetsErrorWithoutAssistantMessage(t *testing.T) {
	client := &fakeClient{url: "http://hook", answer: func(string) (string, error) {
		return "", &webhook.StatusError{Code: 500, Status: "Internal Server Error"}
	}}
	c := newTestController(client, ModeConversation)

	s := c.Submit(context.Background(), State{Draft: "hello"})
	require.False(t, s.InFlight)
	require.Contains(t, s.Error, "500")
	require.Contains(t, s.Error, "Internal Server Error")
	require.Len(t, s.Transcript, 1)
	require.Equal(t, models.RoleUser, s.Transcript[0].Role)

	// the next accepted submission clears the banner
	client.answer = nil
	s.Draft = "retry"
	s = c.Submit(context.Background(), s)
	require.Empty(t, s.Error)
	require.Len(t, s.Transcript, 3)
}

func TestSubmit_TransportFailureFallbackMessage(t *testing.T) {
	client := &fakeClient{url: "http://hook", answer: func(string) (string, error) {
		return "", errors.New("")
	}}
	c := newTestController(client, ModeSingle)

	s := c.Submit(context.Background(), State{Draft: "hello"})
	require.Equal(t, webhook.FallbackMessage, s.Error)
	require.Empty(t, s.Answer)
}

func TestSubmit_UnconfiguredWebhookMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"answer": "unexpected"}`)
	}))
	defer srv.Close()

	c := newTestController(webhook.NewClient(""), ModeConversation)
	s := c.Submit(context.Background(), State{Draft: "hello"})
	require.Equal(t, webhook.NotConfiguredMessage, s.Error)
	require.False(t, s.InFlight)
	require.Equal(t, int32(0), hits.Load())
}

func TestSubmit_AgainstWebhookServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"text": "Y"}]`)
	}))
	defer srv.Close()

	c := newTestController(webhook.NewClient(srv.URL, webhook.WithTimeout(5*time.Second)), ModeConversation)
	require.Equal(t, srv.URL, c.WebhookURL())

	s := c.Submit(context.Background(), State{Draft: "hello"})
	require.Empty(t, s.Error)
	require.Len(t, s.Transcript, 2)
	require.Equal(t, "Y", s.Transcript[1].Text)
}

func TestBegin_DoesNotAliasPriorTranscript(t *testing.T) {
	c := newTestController(&fakeClient{url: "http://hook"}, ModeConversation)

	base := State{Transcript: make([]models.Message, 0, 8)}
	a, _, ok := c.Begin(State{Transcript: base.Transcript, Draft: "a"})
	require.True(t, ok)
	b, _, ok := c.Begin(State{Transcript: base.Transcript, Draft: "b"})
	require.True(t, ok)

	require.Equal(t, "a", a.Transcript[0].Text)
	require.Equal(t, "b", b.Transcript[0].Text)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in       string
		expected Mode
	}{
		{"", ModeConversation},
		{"conversation", ModeConversation},
		{"Chat", ModeConversation},
		{"single", ModeSingle},
		{" QA ", ModeSingle},
	}
	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.expected, got)
	}

	_, err := ParseMode("stream")
	require.Error(t, err)
}

func TestState_CanSubmit(t *testing.T) {
	require.False(t, State{}.CanSubmit())
	require.False(t, State{Draft: "  "}.CanSubmit())
	require.False(t, State{Draft: "hi", InFlight: true}.CanSubmit())
	require.True(t, State{Draft: "hi"}.CanSubmit())
}
