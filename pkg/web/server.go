package web

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"time"

	"github.com/andrew/rag-webapp/pkg/chat"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

//go:embed static/index.html
var indexHTML []byte

// Server serves the chat page and proxies submissions for a single shared session
type Server struct {
	session *chat.Session
	logger  zerolog.Logger
}

type submitRequest struct {
	Draft string `json:"draft"`
}

type stateResponse struct {
	chat.State
	Mode       chat.Mode `json:"mode"`
	WebhookURL string    `json:"webhook_url"`
	CanSubmit  bool      `json:"can_submit"`
	Accepted   *bool     `json:"accepted,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func NewServer(session *chat.Session, logger zerolog.Logger) *Server {
	return &Server{
		session: session,
		logger:  logger,
	}
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/submit", s.handleSubmit)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.response(s.session.Snapshot(), nil))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:     "invalid request body",
			RequestID: chimiddleware.GetReqID(r.Context()),
		})
		return
	}

	// A dispatched exchange always runs to completion, even if the browser goes away.
	ctx := context.WithoutCancel(r.Context())
	state, accepted := s.session.Submit(ctx, req.Draft)
	if !accepted {
		s.logger.Debug().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Bool("in_flight", state.InFlight).
			Msg("submission ignored")
	}

	writeJSON(w, http.StatusOK, s.response(state, &accepted))
}

func (s *Server) response(state chat.State, accepted *bool) stateResponse {
	ctrl := s.session.Controller()
	return stateResponse{
		State:      state,
		Mode:       ctrl.Mode(),
		WebhookURL: ctrl.WebhookURL(),
		CanSubmit:  state.CanSubmit(),
		Accepted:   accepted,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
