package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gitlab.com/yelinaung/leverage/internal/coach"
	"gitlab.com/yelinaung/leverage/internal/logger"
	"gitlab.com/yelinaung/leverage/internal/report"
	"gitlab.com/yelinaung/leverage/internal/solvency"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps service errors onto HTTP status codes. Messages of
// unexpected errors are logged, never returned.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, solvency.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, coach.ErrProfileNotFound),
		errors.Is(err, coach.ErrExpenseNotFound),
		errors.Is(err, report.ErrNothingToChart):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logger.Log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("request_id", RequestIDFromContext(r.Context())).
			Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a JSON body. An empty body is an error unless
// allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", solvency.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", solvency.ErrInvalidInput, err)
	}
	return nil
}

func pathUserID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["userID"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid user id %q", solvency.ErrInvalidInput, raw)
	}
	return id, nil
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Log.Error().Err(err).Str("file", filename).Msg("Failed to write attachment")
	}
}
