package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"iss-assistant-backend/internal/chat"
	"iss-assistant-backend/internal/config"
	"iss-assistant-backend/internal/observability"
	"iss-assistant-backend/internal/store"
	"iss-assistant-backend/internal/types"
)

const maxBodyBytes = 64 << 10

type Server struct {
	router   *chi.Mux
	cfg      *config.Config
	sessions *chat.Sessions
	checks   map[string]observability.HealthCheckFunc
	log      zerolog.Logger
}

// NewServer wires the HTTP API around a session registry. checks feed the
// readiness endpoint.
func NewServer(cfg *config.Config, sessions *chat.Sessions, checks map[string]observability.HealthCheckFunc) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:   r,
		cfg:      cfg,
		sessions: sessions,
		checks:   checks,
		log:      observability.Component("server"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", observability.HealthCheckHandler())
	s.router.Get("/api/ready", observability.ReadinessHandler(s.checks))
	s.router.Post("/api/chat", s.handleChat)
	s.router.Get("/api/chat/transcript", s.handleTranscript)
	s.router.Get("/api/chat/ws", s.handleWS)
	if s.cfg.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler())
	}
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	sid := req.SessionID
	if sid == "" {
		sid = getSessionID(r)
	}
	conv := s.conversation(w, r, sid)

	reply, err := conv.Submit(r.Context(), req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusServiceUnavailable, "a previous message is still being processed")
		return
	case err != nil:
		s.log.Error().Err(err).Str("session_id", conv.SessionID()).Msg("chat turn failed")
		s.writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	s.writeJSON(w, http.StatusOK, toChatResponse(conv.SessionID(), reply, conv.Snapshot()))
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	conv := s.conversation(w, r, getSessionID(r))
	s.writeJSON(w, http.StatusOK, toSnapshot(conv.Snapshot()))
}

// conversation returns the session's conversation, creating it and setting
// the cookie when the client has none.
func (s *Server) conversation(w http.ResponseWriter, r *http.Request, sid string) *chat.Conversation {
	conv, created := s.sessions.GetOrCreate(sid)
	if created {
		s.log.Info().Str("session_id", conv.SessionID()).Str("path", r.URL.Path).Msg("session created")
	}
	if cookie, _ := GetSessionCookie(r); cookie != conv.SessionID() {
		SetSessionCookie(w, r, conv.SessionID())
	}
	w.Header().Set("X-Session-Id", conv.SessionID())
	return conv
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func toChatResponse(sid string, reply chat.Reply, snap chat.Snapshot) types.ChatResponse {
	phases := make([]string, 0, len(reply.Phases))
	for _, p := range reply.Phases {
		phases = append(phases, string(p))
	}
	return types.ChatResponse{
		SessionID: sid,
		Reply:     reply.Text,
		TurnID:    reply.TurnID,
		Outcome:   string(reply.Outcome),
		Synthetic: reply.Synthetic,
		Phases:    phases,
		Messages:  toMessages(snap.Messages),
	}
}

func toSnapshot(snap chat.Snapshot) types.Snapshot {
	turns := make([]types.TurnState, 0, len(snap.Turns))
	for _, t := range snap.Turns {
		turns = append(turns, types.TurnState{TurnID: t.TurnID, Phase: string(t.Phase)})
	}
	return types.Snapshot{
		SessionID: snap.SessionID,
		Messages:  toMessages(snap.Messages),
		IsLoading: snap.IsLoading,
		Turns:     turns,
		Input:     snap.Input,
	}
}

func toMessages(msgs []store.Message) []types.Message {
	out := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, types.Message{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			TurnID:    m.TurnID,
			Timestamp: m.Timestamp,
		})
	}
	return out
}

// NewHTTPServer applies the listen address and timeouts.
func NewHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
