package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/dotcommander/faultline/internal/apperr"
)

// Response represents a standard JSON response envelope.
type Response struct {
	SchemaVersion string        `json:"schema_version"`
	Success       bool          `json:"success"`
	Data          interface{}   `json:"data,omitempty"`
	Error         string        `json:"error,omitempty"`
	ErrorDetail   *apperr.Error `json:"error_detail,omitempty"`
}

// Success wraps a successful response with data.
func Success(data interface{}) Response {
	return Response{
		SchemaVersion: "v1",
		Success:       true,
		Data:          data,
	}
}

// Error wraps an error in a response. Normalized errors additionally expose
// their structured fields (kind, status, endpoint) under error_detail.
func Error(err error) Response {
	r := Response{
		SchemaVersion: "v1",
		Success:       false,
		Error:         err.Error(),
	}

	var norm *apperr.Error
	if errors.As(err, &norm) {
		r.Error = norm.Message
		r.ErrorDetail = norm
	}
	return r
}

// Config controls where and how JSON is written.
type Config struct {
	Writer io.Writer
	Pretty bool
}

// PrintWith encodes v as JSON according to cfg.
func PrintWith(cfg Config, v interface{}) error {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	if cfg.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// Print prints a value as JSON to stdout.
// Default is compact JSON; enable pretty JSON via env var FAULTLINE_PRETTY_JSON=1.
func Print(v interface{}) error {
	pretty := os.Getenv("FAULTLINE_PRETTY_JSON") == "1" || os.Getenv("FAULTLINE_PRETTY_JSON") == "true"
	return PrintWith(Config{Pretty: pretty}, v)
}

// PrintSuccess prints a success response.
func PrintSuccess(data interface{}) error {
	return Print(Success(data))
}

// PrintError prints an error response.
func PrintError(err error) error {
	return Print(Error(err))
}
