package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-group-subscription/internal/domain"
	"telegram-group-subscription/internal/usecase"
)

// Server hosts the inbound notification receiver and the small admin API.
// It is a thin shell: parsing and acknowledgement only, all decisions live
// in the use cases.
type Server struct {
	payUC    usecase.PaymentUseCase
	statsUC  usecase.StatsUseCase
	auth     *AuthManager
	adminKey string
	log      *zerolog.Logger
}

func NewServer(payUC usecase.PaymentUseCase, statsUC usecase.StatsUseCase, auth *AuthManager, adminKey string, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		payUC:    payUC,
		statsUC:  statsUC,
		auth:     auth,
		adminKey: adminKey,
		log:      &srvLog,
	}
}

// Router builds the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.With(RateLimit(20, 40)).Post("/webhook", s.handleWebhook)

	r.Post("/api/admin/login", s.handleLogin)
	r.With(s.auth.Guard).Get("/api/admin/stats", s.handleStats)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// webhookPayload is the gateway notification envelope. Only the event type
// and the provider payment id matter; everything else is re-queried from
// the gateway, never trusted from the payload.
type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if payload.Type != "payment" || payload.Data.ID.String() == "" {
		// Recognizable-but-irrelevant events are acknowledged so the
		// provider stops replaying them.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	outcome, err := s.payUC.ResolveWebhook(ctx, payload.Data.ID.String())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIntentNotFound):
			// Not one of ours; ack so the provider does not keep retrying.
			s.log.Debug().Str("gateway_ref", payload.Data.ID.String()).Msg("webhook for unknown intent")
			writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		default:
			// Retryable trouble (gateway down, lock contention, storage):
			// a 5xx makes the provider replay the notification later.
			s.log.Warn().Err(err).Str("gateway_ref", payload.Data.ID.String()).Msg("webhook reconcile failed")
			http.Error(w, "temporary failure", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "processed",
		"outcome": string(outcome.State),
	})
}

type loginRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.adminKey == "" {
		s.log.Error().Msg("admin API key is not configured")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.APIKey != s.adminKey {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.statsUC.Summary(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
