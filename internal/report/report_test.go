package report

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotcommander/faultline/internal/apperr"
)

type recording struct {
	calls int
	last  error
}

func (r *recording) LogError(err error, _ map[string]any) {
	r.calls++
	r.last = err
}

type panicky struct{}

func (panicky) LogError(error, map[string]any) { panic("sink exploded") }

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop{}.LogError(errors.New("anything"), map[string]any{"k": "v"})
		Nop{}.LogError(nil, nil)
	})
}

func TestSlog_IncludesNormalizedFields(t *testing.T) {
	var buf bytes.Buffer
	r := NewSlog(slog.New(slog.NewJSONHandler(&buf, nil)))

	e := apperr.ClassifyResponse(503, nil).WithEndpoint("/contracts")
	r.LogError(e, map[string]any{"attempt": 2})

	out := buf.String()
	assert.Contains(t, out, `"kind":"api"`)
	assert.Contains(t, out, `"status":503`)
	assert.Contains(t, out, `"endpoint":"/contracts"`)
	assert.Contains(t, out, `"attempt":2`)
}

func TestSlog_NilErrorIgnored(t *testing.T) {
	var buf bytes.Buffer
	r := NewSlog(slog.New(slog.NewJSONHandler(&buf, nil)))
	r.LogError(nil, nil)
	assert.Empty(t, buf.String())
}

func TestMulti_ContinuesPastPanics(t *testing.T) {
	rec := &recording{}
	m := Multi(panicky{}, nil, rec)

	err := errors.New("boom")
	assert.NotPanics(t, func() { m.LogError(err, nil) })
	assert.Equal(t, 1, rec.calls)
	assert.Equal(t, err, rec.last)
}
