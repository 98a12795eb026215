// Package toast implements the transient-notification store: an ordered
// collection of active toasts with timer-based auto-expiry.
package toast

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity is the display class of a toast.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

// DefaultDuration applies when a toast is shown with Duration == 0.
const DefaultDuration = 5 * time.Second

// Sticky disables auto-expiry for a toast; it stays until dismissed.
const Sticky = time.Duration(-1)

// Toast is a single transient notification. ID and Seq are assigned by the
// store on Show; ids are never reused and Seq increases monotonically in
// insertion order.
type Toast struct {
	ID          string        `json:"id"`
	Message     string        `json:"message"`
	Severity    Severity      `json:"severity"`
	Duration    time.Duration `json:"duration"`
	Dismissible bool          `json:"dismissible"`
	Seq         uint64        `json:"seq"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Store owns every toast from Show until removal (expiry or dismiss).
// It is an explicit handle with lifecycle tied to the session; create one
// with New and release it with Close.
type Store struct {
	mu sync.Mutex
	// order holds *Toast in insertion order (front = oldest).
	order    *list.List
	elements map[string]*list.Element
	timers   map[string]*time.Timer
	seq      uint64
	closed   bool

	defaultDuration time.Duration
	onChange        func()
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultDuration overrides the auto-expiry applied to toasts shown
// with Duration == 0.
func WithDefaultDuration(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.defaultDuration = d
		}
	}
}

// WithOnChange registers a callback invoked after every mutation (show,
// dismiss, expiry). It runs outside the store lock; implementations may
// call back into the store.
func WithOnChange(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		order:           list.New(),
		elements:        make(map[string]*list.Element),
		timers:          make(map[string]*time.Timer),
		defaultDuration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Show appends a toast, assigns it a fresh unique id and the next sequence
// number, and schedules auto-expiry unless the toast is sticky. Returns the
// assigned id. Any id supplied by the caller is ignored.
func (s *Store) Show(t Toast) string {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ""
	}

	s.seq++
	t.ID = uuid.NewString()
	t.Seq = s.seq
	t.CreatedAt = time.Now()
	if t.Severity == "" {
		t.Severity = SeverityInfo
	}
	if t.Duration == 0 {
		t.Duration = s.defaultDuration
	}

	s.elements[t.ID] = s.order.PushBack(&t)
	if t.Duration > 0 {
		id := t.ID
		s.timers[id] = time.AfterFunc(t.Duration, func() { s.Dismiss(id) })
	}
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
	return t.ID
}

// Dismiss removes the toast with the given id and cancels its expiry timer.
// Removing an unknown or already-removed id is a no-op; removal is terminal,
// ids are never resurrected.
func (s *Store) Dismiss(id string) {
	s.mu.Lock()
	elem, ok := s.elements[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.order.Remove(elem)
	delete(s.elements, id)
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Active returns a snapshot of the visible toasts in insertion order.
func (s *Store) Active() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Toast, 0, s.order.Len())
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		out = append(out, *elem.Value.(*Toast))
	}
	return out
}

// Get returns the toast with the given id, if still visible.
func (s *Store) Get(id string) (Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.elements[id]
	if !ok {
		return Toast{}, false
	}
	return *elem.Value.(*Toast), true
}

// Len returns the number of visible toasts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Close cancels all pending expiry timers and empties the store. Show calls
// after Close are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.order.Init()
	s.elements = make(map[string]*list.Element)
	s.closed = true
}
