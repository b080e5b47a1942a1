package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/uppath-hq/apiserver/internal/store"
	"github.com/uppath-hq/apiserver/internal/validate"
)

type contextKey string

const contextSubjectKey contextKey = "sub"

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func userIDFromContext(ctx context.Context) (int, error) {
	value := ctx.Value(contextSubjectKey)
	switch subject := value.(type) {
	case int:
		if subject < 1 {
			return 0, errors.New("invalid subject")
		}
		return subject, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(subject))
		if err != nil || parsed < 1 {
			return 0, errors.New("invalid subject")
		}
		return parsed, nil
	default:
		return 0, errors.New("missing subject")
	}
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeStoreError maps the error taxonomy to HTTP statuses: validation
// errors are 400, conflicts 409, missing targets 404, referential
// violations 422, and anything else a 500 with a generic message.
func writeStoreError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *validate.Error
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrReferential):
		writeError(w, http.StatusUnprocessableEntity, "referenced record is missing or still referenced")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func parseURLID(r *http.Request, param string) (int, error) {
	id, err := validate.ID(param, chi.URLParam(r, param))
	if err != nil || id == nil {
		return 0, errors.New("invalid " + param)
	}
	return *id, nil
}
