package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ototana/ototana/internal/apperr"
)

// errorBody is the JSON shape of every failure response.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status and the {error} body. The
// message comes from the error taxonomy; unclassified errors surface as a
// generic 500 so internal detail never reaches the client.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errorBody{Error: apperr.MessageOf(err)})
}

// decodeJSON decodes the request body into v, returning a validation error
// on malformed input.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("リクエストの形式が正しくありません")
	}
	return nil
}

// pathUUID parses the named chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation("IDの形式が正しくありません")
	}
	return id, nil
}

// statusOf maps the error taxonomy onto HTTP statuses. Upstream failures
// pass the upstream status through when one is known.
func statusOf(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuth:
		return http.StatusUnauthorized
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUpstream:
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Status > 0 {
			return ae.Status
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
