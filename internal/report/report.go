// Package report defines the outbound logging sink used by the boundary and
// client layers. Implementations must never panic and never block the caller.
package report

import (
	"errors"
	"log/slog"

	"github.com/dotcommander/faultline/internal/apperr"
)

// Reporter receives failures for out-of-band recording. err may be a
// *apperr.Error or any other error; context carries optional key/value detail.
type Reporter interface {
	LogError(err error, context map[string]any)
}

// Nop discards everything. It stands in wherever no collaborator is
// configured, so callers never need a nil check.
type Nop struct{}

func (Nop) LogError(error, map[string]any) {}

// Slog writes failures to a structured logger.
type Slog struct {
	log *slog.Logger
}

// NewSlog returns a Reporter backed by l, or slog.Default() when l is nil.
func NewSlog(l *slog.Logger) *Slog {
	if l == nil {
		l = slog.Default()
	}
	return &Slog{log: l}
}

func (s *Slog) LogError(err error, context map[string]any) {
	if err == nil {
		return
	}

	attrs := make([]any, 0, 8)
	var norm *apperr.Error
	if errors.As(err, &norm) {
		attrs = append(attrs,
			slog.String("kind", string(norm.Kind)),
			slog.Int("status", norm.StatusCode),
			slog.String("endpoint", norm.Endpoint),
		)
	}
	for k, v := range context {
		attrs = append(attrs, slog.Any(k, v))
	}

	s.log.Error(err.Error(), attrs...)
}

// Multi fans a failure out to several reporters. A panicking reporter does
// not prevent the remaining ones from running.
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}

type multi []Reporter

func (m multi) LogError(err error, context map[string]any) {
	for _, r := range m {
		if r == nil {
			continue
		}
		func() {
			defer func() { _ = recover() }()
			r.LogError(err, context)
		}()
	}
}
