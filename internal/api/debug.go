package api

import (
	"log/slog"
	"net/http"

	"github.com/bankql/bankql/internal/store"
)

// debugHandler serves the transaction inspection endpoint used while
// tuning the system prompt against live data shapes.
type debugHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// transactions handles GET /debug/transactions. Failures follow the
// advisory contract: a 200 body with an error field.
func (h *debugHandler) transactions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Database not connected"})
		return
	}

	snapshot, err := h.store.TransactionSnapshot(r.Context())
	if err != nil {
		h.logger.Warn("transaction snapshot failed", "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}
