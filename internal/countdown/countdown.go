package countdown

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrInvalidDeadlineFormat is reported when a deadline value does not
// match any recognized shape. The tracker treats such a deadline as
// already expired rather than hang on a value it cannot interpret.
var ErrInvalidDeadlineFormat = errors.New("countdown: invalid deadline format")

// ConvertibleTimestamp is a server-timestamp wrapper that can resolve
// itself to a concrete instant (e.g. a document-store timestamp type).
type ConvertibleTimestamp interface {
	ToTime() time.Time
}

// NormalizeDeadline resolves a deadline supplied in one of three
// shapes (a time.Time instant, a ConvertibleTimestamp wrapper, or a
// raw epoch-millisecond number) to a single epoch-millisecond value.
func NormalizeDeadline(v any) (int64, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UnixMilli(), nil
	case *time.Time:
		if d != nil {
			return d.UnixMilli(), nil
		}
	case ConvertibleTimestamp:
		return d.ToTime().UnixMilli(), nil
	case int64:
		return d, nil
	case int:
		return int64(d), nil
	case float64:
		// JSON numbers decode to float64.
		return int64(d), nil
	case json.Number:
		if n, err := d.Int64(); err == nil {
			return n, nil
		}
	}
	return 0, ErrInvalidDeadlineFormat
}

// Remaining is the decomposition of the time left until a deadline.
type Remaining struct {
	Hours   int   `json:"hours"`
	Minutes int   `json:"minutes"`
	Seconds int   `json:"seconds"`
	Millis  int64 `json:"millis"`
}

// Decompose splits a non-negative millisecond duration into whole
// hours, minutes and seconds. Negative input clamps to zero.
func Decompose(millis int64) Remaining {
	if millis < 0 {
		millis = 0
	}
	return Remaining{
		Hours:   int(millis / 3_600_000),
		Minutes: int((millis % 3_600_000) / 60_000),
		Seconds: int((millis % 60_000) / 1_000),
		Millis:  millis,
	}
}

// Urgency classifies how close a deadline is.
type Urgency string

const (
	UrgencyNormal   Urgency = "normal"
	UrgencyWarning  Urgency = "warning"
	UrgencyCritical Urgency = "critical"
)

// Urgency returns the urgency band for this remaining duration.
func (r Remaining) Urgency() Urgency {
	switch {
	case r.Hours == 0 && r.Minutes < 10:
		return UrgencyCritical
	case r.Hours == 0 && r.Minutes < 30:
		return UrgencyWarning
	default:
		return UrgencyNormal
	}
}

// Snapshot is the tracker's current view of the deadline.
type Snapshot struct {
	Remaining Remaining `json:"remaining"`
	Urgency   Urgency   `json:"urgency"`
	Expired   bool      `json:"expired"`
}

// Tracker computes the remaining time until a deadline on a fixed
// tick, and fires an expiry callback exactly once when the deadline
// passes. The initial remaining duration is computed synchronously
// before the first tick.
//
// The expiry callback runs while the tracker's internal lock is held,
// on either the constructing goroutine (immediate expiry) or the tick
// goroutine; it must not call back into Stop or Snapshot.
type Tracker struct {
	deadlineMs int64
	interval   time.Duration
	now        func() time.Time
	onExpire   func()

	mu      sync.Mutex
	snap    Snapshot
	expired bool
	stopped bool
	stop    chan struct{}
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithInterval overrides the 1s tick period, for tests.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) { t.interval = d }
}

// New constructs a Tracker for the given deadline and starts it.
// The deadline may be a time.Time, a ConvertibleTimestamp, or a raw
// epoch-millisecond number. An unrecognized shape returns
// ErrInvalidDeadlineFormat together with a tracker already in the
// expired state (the callback has fired, remaining is zero).
//
// The tracker runs until Stop is called or ctx is cancelled.
func New(ctx context.Context, deadline any, onExpire func(), opts ...Option) (*Tracker, error) {
	t := &Tracker{
		interval: time.Second,
		now:      time.Now,
		onExpire: onExpire,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	ms, err := NormalizeDeadline(deadline)
	if err != nil {
		t.mu.Lock()
		t.expireLocked()
		t.stopped = true
		close(t.stop)
		t.mu.Unlock()
		return t, err
	}
	t.deadlineMs = ms

	t.mu.Lock()
	t.computeLocked()
	t.mu.Unlock()

	go t.run(ctx)
	return t, nil
}

func (t *Tracker) run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.stop:
			return
		case <-ticker.C:
			select {
			case <-ctx.Done():
				t.Stop()
				return
			default:
			}
			t.tick()
		}
	}
}

func (t *Tracker) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.expired {
		// Ticks keep arriving after expiry; they must not re-fire
		// the callback.
		return
	}
	t.computeLocked()
}

// computeLocked recomputes the snapshot from the current clock and
// fires the expiry callback on the transition to zero. Caller holds mu.
func (t *Tracker) computeLocked() {
	diff := t.deadlineMs - t.now().UnixMilli()
	if diff <= 0 {
		t.expireLocked()
		return
	}
	rem := Decompose(diff)
	t.snap = Snapshot{Remaining: rem, Urgency: rem.Urgency()}
}

func (t *Tracker) expireLocked() {
	t.snap = Snapshot{Remaining: Decompose(0), Urgency: UrgencyCritical, Expired: true}
	if !t.expired {
		t.expired = true
		if t.onExpire != nil {
			t.onExpire()
		}
	}
}

// Snapshot returns the most recent remaining-duration computation.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Stop halts the tracker. After Stop returns no further tick executes
// and the expiry callback can no longer fire. Stop is idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	close(t.stop)
}
