package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bankql/bankql/internal/assist"
)

// maxChatBody limits chat request bodies to 1MB.
const maxChatBody = 1 << 20

// chatRequest is the body of POST /chat.
type chatRequest struct {
	Message string `json:"message"`
}

// chatHandler serves the chat endpoint.
type chatHandler struct {
	svc    *assist.Service
	logger *slog.Logger
}

// send handles POST /chat. A malformed or empty body is the only failure
// reported via status code; everything downstream answers 200 with an
// advisory response field.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply := h.svc.Chat(r.Context(), req.Message)
	writeJSON(w, http.StatusOK, reply)
}
