package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/store"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// respondError maps the store error taxonomy onto status codes. Anything
// untyped is a storage failure: logged, surfaced as 500.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case store.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case store.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error("storage error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
