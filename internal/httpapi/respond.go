package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/orato-app/orato/internal/evaluate"
	"github.com/orato-app/orato/internal/observe"
	"github.com/orato-app/orato/internal/questions"
	"github.com/orato-app/orato/internal/session"
	"github.com/orato-app/orato/internal/store"
	"github.com/orato-app/orato/pkg/audio"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response with the given status. Korean text
// in transcripts and feedback is emitted verbatim.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeError maps err to an HTTP status and writes the error body. The
// mapping separates client mistakes (fix your request or recording, 4xx)
// from upstream provider failures (retry later, 502).
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		observe.Logger(r.Context()).Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrExhausted):
		return http.StatusConflict
	case errors.Is(err, evaluate.ErrNoAudio),
		errors.Is(err, audio.ErrDecode),
		errors.Is(err, questions.ErrEmptyScript):
		return http.StatusBadRequest
	case errors.Is(err, evaluate.ErrExternalService),
		errors.Is(err, questions.ErrNoQuestions),
		errors.Is(err, errUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errUpstream marks a bare provider error as an upstream failure so it maps
// to 502 instead of 500.
var errUpstream = errors.New("upstream provider failed")

// wrapProviderErr tags errors from LLM-backed operations as upstream
// failures unless they already map to a specific status.
func wrapProviderErr(err error) error {
	if errorStatus(err) != http.StatusInternalServerError {
		return err
	}
	return fmt.Errorf("%w: %v", errUpstream, err)
}

// badRequest writes a 400 with the given message.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
