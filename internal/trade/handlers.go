package trade

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Prithwiraj-CK/polybot2/internal/reply"
)

// MessageRequest is the JSON body for POST /api/v1/messages.
type MessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// ConfirmResponse is the JSON body returned from confirm/cancel calls.
type ConfirmResponse struct {
	Done bool   `json:"done"`
	Text string `json:"text"`
}

// HandleMessage handles POST /api/v1/messages.
func (s *Service) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		writeError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	rep, err := s.RouteMessage(r.Context(), req.UserID, req.Text)
	if err != nil {
		slog.Error("route message failed", "user", req.UserID, "err", err)
		writeError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}

// HandleConfirm handles POST /api/v1/confirmations/{confirmID}/confirm.
func (s *Service) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	confirmID := chi.URLParam(r, "confirmID")

	text, ok := s.ExecutePendingTrade(r.Context(), confirmID)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGone)
		json.NewEncoder(w).Encode(ConfirmResponse{Done: false, Text: reply.ConfirmationGone})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ConfirmResponse{Done: true, Text: text})
}

// HandleCancel handles POST /api/v1/confirmations/{confirmID}/cancel.
func (s *Service) HandleCancel(w http.ResponseWriter, r *http.Request) {
	confirmID := chi.URLParam(r, "confirmID")

	if !s.CancelPendingTrade(r.Context(), confirmID) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusGone)
		json.NewEncoder(w).Encode(ConfirmResponse{Done: false, Text: reply.ConfirmationGone})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ConfirmResponse{Done: true, Text: reply.Cancelled})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
