package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var errInvalidJSON = apperr.New(apperr.KindValidation, "Invalid request body")

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeInfo(w http.ResponseWriter, code int, info string) {
	writeJSON(w, code, map[string]string{"info": info})
}

// writeError answers with the status and message of err's kind. Internal
// errors are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	code, msg := apperr.Describe(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("url", r.URL.String()).Msg("request failed")
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidJSON
	}
	return nil
}

// pathID parses a positive integer URL parameter, answering with invalid
// when it is missing or malformed.
func pathID(r *http.Request, name string, invalid error) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id, nil
}
