// Package server exposes the supervisor over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/agent"
	"github.com/sudo-god/AI-Receptionist/pkg/supervisor"
)

// TurnHandler is the part of the supervisor the HTTP layer needs.
type TurnHandler interface {
	Handle(ctx context.Context, sessionID string, text string) (agent.Reply, error)
	Reset(ctx context.Context, sessionID string) error
}

var _ TurnHandler = (*supervisor.Supervisor)(nil)

type ChatRequest struct {
	Message   string `json:"message"`
	AccountID string `json:"account_id"`
}

type ChatResponse struct {
	Response      string `json:"response"`
	IsInterrupted bool   `json:"is_interrupted"`
}

type ResetRequest struct {
	AccountID string `json:"account_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

const unavailableMessage = "temporarily unavailable, please retry"

// MaxRequestBytes caps the body accepted by /chat and /reset.
const MaxRequestBytes = 1 << 20

type Handler struct {
	turns TurnHandler
	mux   *http.ServeMux
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(turns TurnHandler) *Handler {
	h := &Handler{turns: turns, mux: http.NewServeMux()}
	h.mux.HandleFunc("/chat", h.ChatHandler)
	h.mux.HandleFunc("/reset", h.ResetHandler)
	h.mux.HandleFunc("/healthz", h.HealthHandler)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Invalid request method"})
		return
	}

	var req ChatRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.AccountID == "" || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "account_id and message are required"})
		return
	}

	reply, err := h.turns.Handle(r.Context(), req.AccountID, req.Message)
	if err != nil {
		log.Error().Err(err).Str("account_id", req.AccountID).Msg("turn failed")
		status := http.StatusServiceUnavailable
		if errors.Is(err, supervisor.ErrSessionSuspended) || errors.Is(err, agent.ErrNotSuspended) {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Error: unavailableMessage})
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: reply.Text, IsInterrupted: reply.Suspended})
}

func (h *Handler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Invalid request method"})
		return
	}
	var req ResetRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.AccountID) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "account_id is required"})
		return
	}
	if err := h.turns.Reset(r.Context(), req.AccountID); err != nil {
		log.Error().Err(err).Str("account_id", req.AccountID).Msg("reset failed")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: unavailableMessage})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "Request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON"})
		return false
	}
	return true
}
