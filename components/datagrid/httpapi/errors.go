package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

// StatusFor maps grid errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, datagrid.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, datagrid.ErrDuplicateID), errors.Is(err, datagrid.ErrStaleSnapshot):
		return http.StatusConflict
	case errors.Is(err, datagrid.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ErrorBody is the JSON payload returned for failed requests.
func ErrorBody(err error) map[string]any {
	body := map[string]any{"error": err.Error()}
	var verr *datagrid.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		body["fields"] = verr.Fields
	}
	return body
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorBody(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
