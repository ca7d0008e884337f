// Package circuitbreaker stops calling an optional collaborator, such as the
// shared chart cache, after it fails repeatedly, then probes it again after a
// cool-down.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State of a breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrOpen is returned without calling the operation while the breaker is open.
	ErrOpen = errors.New("circuit breaker is open")
	// ErrProbeInFlight is returned in half-open state once the probe budget is used.
	ErrProbeInFlight = errors.New("circuit breaker probe in flight")
)

// Rejected reports whether err came from the breaker rather than the operation.
func Rejected(err error) bool {
	return errors.Is(err, ErrOpen) || errors.Is(err, ErrProbeInFlight)
}

// Settings tune a breaker. Zero values take the defaults noted per field.
type Settings struct {
	Name string
	// Failures in a row that open the breaker (3).
	TripAfter int
	// Successful probes that close it again (1).
	CloseAfter int
	// Time spent open before probing (15s).
	CoolDown time.Duration
	// Concurrent probes allowed while half-open (1).
	Probes int

	// Counts decides which errors are failures. Nil counts every error.
	Counts func(err error) bool
	// OnChange observes transitions.
	OnChange func(name string, from, to State)
}

func (s Settings) withDefaults() Settings {
	if s.TripAfter <= 0 {
		s.TripAfter = 3
	}
	if s.CloseAfter <= 0 {
		s.CloseAfter = 1
	}
	if s.CoolDown <= 0 {
		s.CoolDown = 15 * time.Second
	}
	if s.Probes <= 0 {
		s.Probes = 1
	}
	return s
}

// Breaker is safe for concurrent use.
type Breaker struct {
	settings Settings
	now      func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	openedAt  time.Time
	probing   int
}

// New returns a closed breaker.
func New(s Settings) *Breaker {
	return &Breaker{settings: s.withDefaults(), now: time.Now}
}

// Execute runs op unless the breaker rejects the call, and records the outcome.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := op(ctx)
	b.record(err)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.settings.CoolDown {
			return ErrOpen
		}
		b.transition(StateHalfOpen)
		b.probing = 1
		return nil
	case StateHalfOpen:
		if b.probing >= b.settings.Probes {
			return ErrProbeInFlight
		}
		b.probing++
		return nil
	default:
		return nil
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := err != nil
	if failed && b.settings.Counts != nil {
		failed = b.settings.Counts(err)
	}

	if b.state == StateHalfOpen && b.probing > 0 {
		b.probing--
	}
	if failed {
		b.successes = 0
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.settings.TripAfter {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
		return
	}
	b.failures = 0
	b.successes++
	if b.state == StateHalfOpen && b.successes >= b.settings.CloseAfter {
		b.transition(StateClosed)
	}
}

func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.failures, b.successes, b.probing = 0, 0, 0
	if b.settings.OnChange != nil {
		b.settings.OnChange(b.settings.Name, from, to)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Name returns the configured name.
func (b *Breaker) Name() string { return b.settings.Name }
