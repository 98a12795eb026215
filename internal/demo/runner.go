// Package demo implements the standalone colorized demo harness for
// faultline: a four-act, in-process walkthrough of classification, the
// invocation wrapper, the toast store, and the render boundary.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/dotcommander/faultline/internal/apperr"
	"github.com/dotcommander/faultline/internal/boundary"
	"github.com/dotcommander/faultline/internal/client"
	"github.com/dotcommander/faultline/internal/report"
	"github.com/dotcommander/faultline/internal/toast"
)

// ANSI color constants.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBgBlue = "\033[44m"
)

// Runner holds the demo execution state.
type Runner struct {
	out   io.Writer
	color bool
	fast  bool
}

// NewRunner creates a new demo runner writing to out.
func NewRunner(out io.Writer, fast bool) *Runner {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	return &Runner{out: out, color: color, fast: fast}
}

func (r *Runner) colorize(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + colorReset
}

func (r *Runner) printAct(number int, name string) {
	header := fmt.Sprintf("  Act %d: %s  ", number, name)
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.colorize(colorBgBlue+colorBold, header))
}

func (r *Runner) printStep(format string, args ...any) {
	fmt.Fprintf(r.out, "  %s\n", fmt.Sprintf(format, args...))
}

func (r *Runner) pause() {
	if !r.fast {
		time.Sleep(700 * time.Millisecond)
	}
}

// Run executes all acts. It never returns an error: the demo's failures are
// the exhibit, not a problem.
func (r *Runner) Run() {
	r.actClassify()
	r.actWrapper()
	r.actToasts()
	r.actBoundary()
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.colorize(colorGreen+colorBold, "  Done."))
}

func (r *Runner) actClassify() {
	r.printAct(1, "Classification")

	cases := []struct {
		label string
		err   *apperr.Error
	}{
		{"404, empty body", apperr.ClassifyResponse(404, nil)},
		{"409, server message", apperr.ClassifyResponse(409, []byte(`{"message":"contract already archived"}`))},
		{"422, field detail", apperr.ClassifyResponse(422, []byte(`{"message":"validation failed","fields":{"email":"must be valid"}}`))},
		{"connection refused", apperr.ClassifyTransport(errors.New("dial tcp: connection refused"))},
		{"broken payload", apperr.ClassifyParseFailure(errors.New("unexpected end of JSON input"))},
	}
	for _, c := range cases {
		r.printStep("%-24s -> %s %s",
			c.label,
			r.colorize(colorCyan, fmt.Sprintf("[%s]", c.err.Kind)),
			c.err.Message)
		r.pause()
	}
}

func (r *Runner) actWrapper() {
	r.printAct(2, "Invocation wrapper with caller-side retry")

	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"c-1","name":"alpha"}`))
	}))
	defer srv.Close()

	type contract struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	c := client.New(srv.URL, client.WithReporter(report.NewSlog(nil)))
	call := client.NewGet[contract](c, "/contracts/c-1")

	_, err := call.Do(context.Background())
	r.printStep("single invocation: %s", r.colorize(colorRed, err.Error()))
	r.pause()

	got, err := client.RetryCall(context.Background(), call)
	if err != nil {
		r.printStep("retry failed: %v", err)
		return
	}
	r.printStep("with backoff: %s after %d attempts",
		r.colorize(colorGreen, fmt.Sprintf("got %q", got.Name)), attempts.Load())
	r.pause()
}

func (r *Runner) actToasts() {
	r.printAct(3, "Toast lifecycle")

	store := toast.New()
	defer store.Close()

	show := func(msg string, sev toast.Severity, d time.Duration) string {
		id := store.Show(toast.Toast{Message: msg, Severity: sev, Duration: d})
		r.printStep("show    %s (%s)", msg, sev)
		return id
	}

	show("contract saved", toast.SeveritySuccess, 300*time.Millisecond)
	warn := show("network is flaky", toast.SeverityWarning, toast.Sticky)
	show("server unavailable, retry", toast.SeverityError, 600*time.Millisecond)

	r.printStep("active  %d toasts", store.Len())
	r.pause()

	store.Dismiss(warn)
	store.Dismiss(warn) // second dismiss is a no-op
	r.printStep("dismiss sticky warning (twice; second is a no-op)")

	time.Sleep(700 * time.Millisecond)
	r.printStep("after expiry: %d toasts remain", store.Len())
	r.pause()
}

func (r *Runner) actBoundary() {
	r.printAct(4, "Render boundary")

	broken := true
	b := boundary.New(
		func() (string, error) {
			if broken {
				panic("nil dereference in contract table")
			}
			return "<contract table>", nil
		},
		func(err error) string { return "<something went wrong - retry?>" },
		boundary.WithReporter[string](report.NewSlog(nil)),
	)

	r.printStep("render  %s", r.colorize(colorRed, b.Render()))
	r.printStep("render  %s %s", b.Render(), r.colorize(colorDim, "(still faulted, no re-log)"))
	r.pause()

	broken = false
	b.Reset()
	r.printStep("reset, render  %s", r.colorize(colorGreen, b.Render()))
	r.pause()
}
