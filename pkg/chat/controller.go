package chat

import (
	"context"
	"strings"

	"github.com/andrew/rag-webapp/pkg/models"
	"github.com/andrew/rag-webapp/pkg/webhook"
	"github.com/rs/zerolog"
)

// Exchange is one accepted submission waiting for the webhook
type Exchange struct {
	// Question is the draft exactly as typed, untrimmed
	Question string
}

// Result is the outcome of running an Exchange
type Result struct {
	Answer string
	Err    error
}

// Controller drives the question/answer lifecycle of a session.
// It holds no session state itself; every call takes and returns a State.
type Controller struct {
	client webhook.Client
	mode   Mode
	logger zerolog.Logger
}

// NewController creates a controller that sends questions through client
func NewController(client webhook.Client, mode Mode, logger zerolog.Logger) *Controller {
	if mode == "" {
		mode = ModeConversation
	}
	return &Controller{
		client: client,
		mode:   mode,
		logger: logger,
	}
}

// Mode returns the transcript retention mode
func (c *Controller) Mode() Mode {
	return c.mode
}

// WebhookURL returns the configured destination, empty when unconfigured
func (c *Controller) WebhookURL() string {
	return c.client.URL()
}

// Begin accepts the current draft if it is submittable and marks the session in flight.
// It returns false, with the state untouched, when the draft is blank or an exchange is
// already running.
func (c *Controller) Begin(s State) (State, *Exchange, bool) {
	if s.InFlight || strings.TrimSpace(s.Draft) == "" {
		return s, nil, false
	}

	ex := &Exchange{Question: s.Draft}
	switch c.mode {
	case ModeSingle:
		s.Answer = ""
	default:
		s = s.appendMessage(models.NewMessage(models.RoleUser, strings.TrimSpace(s.Draft)))
		s.Draft = ""
	}
	s.Error = ""
	s.InFlight = true

	c.logger.Debug().Str("mode", string(c.mode)).Int("transcript_len", len(s.Transcript)).Msg("exchange started")
	return s, ex, true
}

// Run performs the network call for an exchange. It does not touch any State and may be
// called off the UI goroutine.
func (c *Controller) Run(ctx context.Context, ex *Exchange) Result {
	answer, err := c.client.Ask(ctx, ex.Question)
	return Result{Answer: answer, Err: err}
}

// Resolve applies the outcome of an exchange and releases the in-flight flag
func (c *Controller) Resolve(s State, res Result) State {
	s.InFlight = false

	if res.Err != nil {
		s.Error = webhook.Describe(res.Err)
		c.logger.Warn().Err(res.Err).Msg("exchange failed")
		return s
	}

	switch c.mode {
	case ModeSingle:
		s.Answer = res.Answer
	default:
		s = s.appendMessage(models.NewMessage(models.RoleAssistant, res.Answer))
	}
	c.logger.Debug().Int("answer_len", len(res.Answer)).Msg("exchange completed")
	return s
}

// Submit runs a whole exchange synchronously: Begin, Run, Resolve.
// A blank draft or an exchange already in flight makes it a no-op.
func (c *Controller) Submit(ctx context.Context, s State) (next State) {
	next, ex, ok := c.Begin(s)
	if !ok {
		return next
	}
	defer func() { next.InFlight = false }()

	return c.Resolve(next, c.Run(ctx, ex))
}
