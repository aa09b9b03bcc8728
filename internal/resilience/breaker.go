package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// MaxRequests is the number of trial calls allowed while half-open
	MaxRequests uint32
	// Interval is the closed-state window after which counts are cleared
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again
	Timeout time.Duration
	// ReadyToTrip decides, after a failure while closed, whether to open
	ReadyToTrip func(counts Counts) bool
	// OnStateChange is called whenever the state changes
	OnStateChange func(name string, from State, to State)
}

// Counts holds the statistics for the current window
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Breaker guards calls to a single origin.
type Breaker struct {
	name     string
	settings Settings

	mu         sync.Mutex
	state      State
	generation uint64
	counts     Counts
	expiry     time.Time
}

// New creates a breaker, filling unset settings with defaults.
func New(name string, settings Settings) *Breaker {
	if settings.MaxRequests == 0 {
		settings.MaxRequests = 1
	}
	if settings.Interval == 0 {
		settings.Interval = 60 * time.Second
	}
	if settings.Timeout == 0 {
		settings.Timeout = 60 * time.Second
	}
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(counts Counts) bool {
			return counts.ConsecutiveFailures > 5
		}
	}

	return &Breaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
		expiry:   time.Now().Add(settings.Interval),
	}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, applying any pending timed transition.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, _ := b.current(time.Now())
	return state
}

// Counts returns a copy of the internal counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts
}

// Do runs fn if the breaker admits it. A nil error from fn counts as a
// success; anything else as a failure. Rejections return ErrCircuitOpen or
// ErrTooManyRequests without calling fn.
func (b *Breaker) Do(fn func() error) error {
	generation, err := b.admit()
	if err != nil {
		return err
	}

	defer func() {
		if e := recover(); e != nil {
			b.settle(generation, false)
			panic(e)
		}
	}()

	err = fn()
	b.settle(generation, err == nil)
	return err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, generation := b.current(time.Now())
	switch {
	case state == StateOpen:
		return generation, ErrCircuitOpen
	case state == StateHalfOpen && b.counts.Requests >= b.settings.MaxRequests:
		return generation, ErrTooManyRequests
	}

	b.counts.Requests++
	return generation, nil
}

func (b *Breaker) settle(before uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state, generation := b.current(now)
	// a result from a previous window must not touch the new counts
	if generation != before {
		return
	}

	if success {
		b.counts.TotalSuccesses++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.MaxRequests {
			b.transition(StateClosed, now)
		}
		return
	}

	switch state {
	case StateClosed:
		b.counts.TotalFailures++
		b.counts.ConsecutiveFailures++
		b.counts.ConsecutiveSuccesses = 0
		if b.settings.ReadyToTrip(b.counts) {
			b.transition(StateOpen, now)
		}
	case StateHalfOpen:
		b.transition(StateOpen, now)
	}
}

func (b *Breaker) current(now time.Time) (State, uint64) {
	switch b.state {
	case StateClosed:
		if !b.expiry.IsZero() && b.expiry.Before(now) {
			b.newGeneration(now)
		}
	case StateOpen:
		if b.expiry.Before(now) {
			b.transition(StateHalfOpen, now)
		}
	}
	return b.state, b.generation
}

func (b *Breaker) transition(state State, now time.Time) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state
	b.newGeneration(now)

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}

func (b *Breaker) newGeneration(now time.Time) {
	b.generation++
	b.counts = Counts{}

	switch b.state {
	case StateClosed:
		b.expiry = now.Add(b.settings.Interval)
	case StateOpen:
		b.expiry = now.Add(b.settings.Timeout)
	default:
		b.expiry = time.Time{}
	}
}
