package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorKind classifies every failure the gateway can report
type ErrorKind int

const (
	// MissingInput: the url query parameter is absent or empty.
	MissingInput ErrorKind = iota
	// InvalidInput: the url does not point at a supported video host.
	InvalidInput
	// ResolutionFailure: the resolver could not produce metadata or a stream.
	ResolutionFailure
	// StreamFailure: the transfer broke after the response was committed.
	StreamFailure
)

func (k ErrorKind) String() string {
	switch k {
	case MissingInput:
		return "missing_input"
	case InvalidInput:
		return "invalid_input"
	case ResolutionFailure:
		return "resolution_failure"
	case StreamFailure:
		return "stream_failure"
	default:
		return "unknown"
	}
}

// Status returns the HTTP status a kind maps to. StreamFailure never reaches the
// client as a status since the headers are already sent.
func (k ErrorKind) Status() int {
	switch k {
	case MissingInput, InvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text for a kind
func (k ErrorKind) Message() string {
	switch k {
	case MissingInput:
		return "URL is required"
	case InvalidInput:
		return "Invalid YouTube URL"
	case ResolutionFailure:
		return "Failed to fetch video info"
	default:
		return "Download failed"
	}
}

// Error is a classified gateway failure. Err is for the logs only.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes the status and generic message for e.Kind
func writeError(w http.ResponseWriter, e *Error) {
	writeJSON(w, e.Kind.Status(), errorResponse{Error: e.Kind.Message()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
