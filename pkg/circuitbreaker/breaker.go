// Package circuitbreaker keeps a failing LLM endpoint from being hammered.
// The breaker opens after a run of consecutive failures, rejects calls for a
// cooldown period, then admits a bounded number of probes before closing.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrCircuitOpen is returned without invoking the call while the
	// breaker is cooling down.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned when the half-open probe budget is
	// already in flight.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// State is the breaker position. The numeric values are stable: they are
// exported as a gauge (0 closed, 1 half-open, 2 open).
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

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

type Config struct {
	// MaxProbes caps concurrent calls admitted in half-open state.
	MaxProbes uint32
	// Cooldown is how long an open breaker rejects calls before probing.
	Cooldown time.Duration
	// FailureThreshold consecutive failures open the breaker;
	// SuccessThreshold consecutive probe successes close it again.
	FailureThreshold uint32
	SuccessThreshold uint32

	OnStateChange func(name string, from State, to State)
	Logger        *zap.Logger
}

// Breaker tracks consecutive outcomes of the calls it wraps. Safe for
// concurrent use.
type Breaker struct {
	name             string
	maxProbes        uint32
	cooldown         time.Duration
	failureThreshold uint32
	successThreshold uint32
	onStateChange    func(name string, from State, to State)
	logger           *zap.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	st         stats
	expiry     time.Time
}

// stats resets on every state change; results from a previous generation are
// discarded so a slow straggler cannot flip a fresh state.
type stats struct {
	requests      uint32
	consecSuccess uint32
	consecFailure uint32
}

func New(name string, cfg Config) *Breaker {
	b := &Breaker{
		name:             name,
		maxProbes:        cfg.MaxProbes,
		cooldown:         cfg.Cooldown,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		onStateChange:    cfg.OnStateChange,
		logger:           cfg.Logger,
	}

	if b.maxProbes == 0 {
		b.maxProbes = 1
	}
	if b.cooldown == 0 {
		b.cooldown = 60 * time.Second
	}
	if b.failureThreshold == 0 {
		b.failureThreshold = 5
	}
	if b.successThreshold == 0 {
		b.successThreshold = 2
	}

	b.nextGeneration(time.Now())

	return b
}

// Execute runs fn under the breaker. A rejected call returns ErrCircuitOpen
// or ErrTooManyRequests without invoking fn; a panic in fn counts as a
// failure and is re-raised.
func (b *Breaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	generation, err := b.beforeRequest()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.afterRequest(generation, false)
			panic(r)
		}
	}()

	err = fn()
	b.afterRequest(generation, err == nil)
	return err
}

// State reports the current position, advancing an expired open breaker to
// half-open first.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, _ := b.currentState(time.Now())
	return state
}

func (b *Breaker) beforeRequest() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state, generation := b.currentState(now)

	if state == StateOpen {
		return generation, ErrCircuitOpen
	}
	if state == StateHalfOpen && b.st.requests >= b.maxProbes {
		return generation, ErrTooManyRequests
	}

	b.st.requests++
	return generation, nil
}

func (b *Breaker) afterRequest(before uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state, generation := b.currentState(now)
	if generation != before {
		return
	}

	if success {
		b.onSuccess(state, now)
	} else {
		b.onFailure(state, now)
	}
}

func (b *Breaker) onSuccess(state State, now time.Time) {
	b.st.consecSuccess++
	b.st.consecFailure = 0

	if state == StateHalfOpen && b.st.consecSuccess >= b.successThreshold {
		b.setState(StateClosed, now)
	}
}

func (b *Breaker) onFailure(state State, now time.Time) {
	b.st.consecFailure++
	b.st.consecSuccess = 0

	switch state {
	case StateClosed:
		if b.st.consecFailure >= b.failureThreshold {
			b.setState(StateOpen, now)
		}
	case StateHalfOpen:
		// One failed probe is enough evidence the endpoint is still down.
		b.setState(StateOpen, now)
	}
}

func (b *Breaker) currentState(now time.Time) (State, uint64) {
	if b.state == StateOpen && b.expiry.Before(now) {
		b.setState(StateHalfOpen, now)
	}
	return b.state, b.generation
}

func (b *Breaker) setState(state State, now time.Time) {
	if b.state == state {
		return
	}

	prev := b.state
	b.state = state

	b.nextGeneration(now)

	if b.onStateChange != nil {
		b.onStateChange(b.name, prev, state)
	}

	if b.logger != nil {
		b.logger.Info("Circuit breaker state changed",
			zap.String("name", b.name),
			zap.String("from", prev.String()),
			zap.String("to", state.String()),
		)
	}
}

func (b *Breaker) nextGeneration(now time.Time) {
	b.generation++
	b.st = stats{}

	if b.state == StateOpen {
		b.expiry = now.Add(b.cooldown)
	} else {
		b.expiry = time.Time{}
	}
}
