// Package boundary contains render failures to a subtree. It is the
// systems-side equivalent of a render-tree error boundary: a supervisor that
// wraps a render call, recovers panics, and swaps in a fallback output while
// faulted.
package boundary

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/dotcommander/faultline/internal/report"
)

// RenderFunc produces the wrapped subtree's output. A panic inside it is
// treated the same as a returned error.
type RenderFunc[T any] func() (T, error)

// FallbackFunc produces the substitute output shown while faulted.
type FallbackFunc[T any] func(err error) T

// Boundary supervises a render function. State machine:
// healthy -> faulted on a render failure, faulted -> healthy on Reset.
// Failures outside Render (event handlers, async callbacks) are not caught;
// those belong to the API invocation path.
type Boundary[T any] struct {
	mu       sync.Mutex
	render   RenderFunc[T]
	fallback FallbackFunc[T]
	reporter report.Reporter

	faulted bool
	err     error
	stack   []byte
}

// Option configures a Boundary.
type Option[T any] func(*Boundary[T])

// WithReporter sets the sink notified on each transition into the faulted
// state. Defaults to report.Nop.
func WithReporter[T any](r report.Reporter) Option[T] {
	return func(b *Boundary[T]) {
		if r != nil {
			b.reporter = r
		}
	}
}

// New wraps render with a fallback. fallback receives the captured failure.
func New[T any](render RenderFunc[T], fallback FallbackFunc[T], opts ...Option[T]) *Boundary[T] {
	b := &Boundary[T]{
		render:   render,
		fallback: fallback,
		reporter: report.Nop{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Render returns the wrapped output while healthy. On a render failure it
// transitions to faulted, captures the error and stack trace, reports the
// failure exactly once for the transition, and returns the fallback output.
// While faulted, the render function is not invoked again; every call
// returns the fallback without re-reporting.
func (b *Boundary[T]) Render() T {
	b.mu.Lock()
	if b.faulted {
		err := b.err
		b.mu.Unlock()
		return b.fallback(err)
	}
	b.mu.Unlock()

	out, err, stack := b.safeRender()
	if err == nil {
		return out
	}

	b.mu.Lock()
	alreadyFaulted := b.faulted
	b.faulted = true
	b.err = err
	b.stack = stack
	b.mu.Unlock()

	// One report per transition into faulted, never per render.
	if !alreadyFaulted {
		func() {
			defer func() { _ = recover() }()
			b.reporter.LogError(err, map[string]any{"stack": string(stack)})
		}()
	}
	return b.fallback(err)
}

// safeRender invokes the render function, converting a panic into an error
// with the stack captured at the panic site.
func (b *Boundary[T]) safeRender() (out T, err error, stack []byte) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
			stack = debug.Stack()
		}
	}()

	out, err = b.render()
	if err != nil {
		stack = debug.Stack()
	}
	return out, err, stack
}

// Faulted reports whether the boundary is currently in the faulted state.
func (b *Boundary[T]) Faulted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.faulted
}

// Err returns the failure captured on the last transition into faulted,
// or nil while healthy.
func (b *Boundary[T]) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.faulted {
		return nil
	}
	return b.err
}

// Stack returns the trace captured with the fault, for an explicit
// "view technical details" affordance. Empty while healthy.
func (b *Boundary[T]) Stack() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.faulted {
		return ""
	}
	return string(b.stack)
}

// Reset returns the boundary to healthy; the next Render re-attempts the
// wrapped function. A recurring failure simply faults again.
func (b *Boundary[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faulted = false
	b.err = nil
	b.stack = nil
}
