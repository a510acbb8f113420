package api

import (
	"net/http"

	"github.com/bankql/bankql/internal/prompt"
)

// schemas handles GET /schemas, exposing the static collection catalog the
// model is prompted with.
func schemas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, prompt.Schemas())
}
