package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Type       string `json:"type"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// ResponseType maps a status code to the envelope's type label.
func ResponseType(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "Success"
	case code >= 400 && code < 500:
		return "Client Error"
	case code >= 500:
		return "Server Error"
	default:
		return "Unknown"
	}
}

// WriteEnvelope writes data wrapped in an Envelope.
func WriteEnvelope(w http.ResponseWriter, code int, message string, data any) {
	WriteJSON(w, code, Envelope{
		StatusCode: code,
		Type:       ResponseType(code),
		Message:    message,
		Data:       data,
	})
}

// WriteError writes an envelope with no data.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteEnvelope(w, code, message, nil)
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DecodeJSON decodes the request body into v, capped at 1 MiB.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	return dec.Decode(v)
}
