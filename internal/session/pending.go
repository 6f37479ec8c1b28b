// Package session owns the device session: connection state, the pending
// change tracker and the public control surface consumed by the CLI and
// tray layers.
package session

import (
	"sync"
	"time"

	"github.com/Alia5/razerctl/internal/protocol"
)

// Clock abstracts time for the tracker so tests advance virtual time
// instead of sleeping.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer mirrors the subset of *time.Timer the tracker needs.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// ConfirmWindow is how long a requested change stays armed before it is
// declared unconfirmed. Sending a frame proves nothing; only a
// device-originated notification inside this window counts as success.
const ConfirmWindow = 2 * time.Second

// PendingState is the lifecycle of one requested change.
type PendingState int

const (
	StateArmed PendingState = iota
	StateConfirmed
	StateExpired
)

func (s PendingState) String() string {
	switch s {
	case StateArmed:
		return "armed"
	case StateConfirmed:
		return "confirmed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// PendingChange is a snapshot of one in-flight request.
type PendingChange struct {
	Field       protocol.Field
	Target      int
	RequestedAt time.Time
	Deadline    time.Time
	State       PendingState
}

// ChangeResult reports the terminal outcome of one armed change.
type ChangeResult struct {
	Field     protocol.Field
	Target    int
	Confirmed bool
}

type pendingEntry struct {
	change PendingChange
	timer  Timer
	result chan ChangeResult
}

// tracker holds at most one armed change per field. Arming a replacement
// cancels and discards the previous one; expiry and disconnect resolve to
// unconfirmed without touching observed state.
type tracker struct {
	mu      sync.Mutex
	clock   Clock
	window  time.Duration
	pending map[protocol.Field]*pendingEntry

	// onResolve runs after every terminal transition, outside the tracker
	// lock. May be nil.
	onResolve func(ChangeResult)
}

func newTracker(clock Clock, onResolve func(ChangeResult)) *tracker {
	return &tracker{
		clock:     clock,
		window:    ConfirmWindow,
		pending:   make(map[protocol.Field]*pendingEntry),
		onResolve: onResolve,
	}
}

// Arm registers a new requested change and starts its deadline. The returned
// channel delivers exactly one ChangeResult when the change resolves.
func (t *tracker) Arm(field protocol.Field, target int) <-chan ChangeResult {
	t.mu.Lock()

	var superseded *pendingEntry
	if prev, ok := t.pending[field]; ok {
		prev.timer.Stop()
		superseded = prev
		delete(t.pending, field)
	}

	now := t.clock.Now()
	entry := &pendingEntry{
		change: PendingChange{
			Field:       field,
			Target:      target,
			RequestedAt: now,
			Deadline:    now.Add(t.window),
			State:       StateArmed,
		},
		result: make(chan ChangeResult, 1),
	}
	t.pending[field] = entry
	entry.timer = t.clock.AfterFunc(t.window, func() { t.expire(field, entry) })
	t.mu.Unlock()

	if superseded != nil {
		t.finish(superseded, StateExpired)
	}
	return entry.result
}

// Observe feeds one device-originated value. It confirms and resolves the
// armed change for field when the value matches its target exactly.
func (t *tracker) Observe(field protocol.Field, value int) bool {
	t.mu.Lock()
	entry, ok := t.pending[field]
	if !ok || entry.change.Target != value {
		t.mu.Unlock()
		return false
	}
	entry.timer.Stop()
	delete(t.pending, field)
	t.mu.Unlock()

	t.finish(entry, StateConfirmed)
	return true
}

// Cancel resolves the armed change for field, if any, as unconfirmed.
func (t *tracker) Cancel(field protocol.Field) {
	t.mu.Lock()
	entry, ok := t.pending[field]
	if ok {
		entry.timer.Stop()
		delete(t.pending, field)
	}
	t.mu.Unlock()

	if ok {
		t.finish(entry, StateExpired)
	}
}

// CancelAll resolves every armed change as unconfirmed. Used on disconnect
// so nothing is left dangling mid-probe.
func (t *tracker) CancelAll() {
	t.mu.Lock()
	entries := make([]*pendingEntry, 0, len(t.pending))
	for field, entry := range t.pending {
		entry.timer.Stop()
		entries = append(entries, entry)
		delete(t.pending, field)
	}
	t.mu.Unlock()

	for _, entry := range entries {
		t.finish(entry, StateExpired)
	}
}

// Pending returns a snapshot of the armed change for field, if any.
func (t *tracker) Pending(field protocol.Field) (PendingChange, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.pending[field]; ok {
		return entry.change, true
	}
	return PendingChange{}, false
}

func (t *tracker) expire(field protocol.Field, entry *pendingEntry) {
	t.mu.Lock()
	// a replacement or confirmation may have won the race
	if t.pending[field] != entry {
		t.mu.Unlock()
		return
	}
	delete(t.pending, field)
	t.mu.Unlock()

	t.finish(entry, StateExpired)
}

func (t *tracker) finish(entry *pendingEntry, state PendingState) {
	entry.change.State = state
	res := ChangeResult{
		Field:     entry.change.Field,
		Target:    entry.change.Target,
		Confirmed: state == StateConfirmed,
	}
	entry.result <- res
	if t.onResolve != nil {
		t.onResolve(res)
	}
}
