package vanguard

import (
	"context"
	"time"
)

// Probe is a side-effect-free readiness check for an external dependency.
// A nil return means the dependency is usable right now; any error means
// "not ready yet" — probe failures and logical not-ready are equivalent.
type Probe interface {
	Check(ctx context.Context) error
}

// InitStep is a one-shot, fallible initialization action run before
// readiness polling (e.g., a schema migration). Steps are never retried:
// re-running a non-idempotent action without collaborator-specific
// guarantees is unsafe, so a single failure is fatal to the whole startup.
type InitStep interface {
	Run(ctx context.Context) error
}

// Closer releases resources held by an init step. Closers are invoked in
// LIFO (reverse registration) order, but only on failure paths — after a
// successful handoff the process image is gone and nothing runs.
type Closer interface {
	Close()
}

// PollConfig bounds one readiness poll: at most MaxAttempts probe calls
// with a fixed Interval between consecutive attempts. Immutable for the
// lifetime of one Await call.
type PollConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPollConfig returns the built-in wait budget: 30 attempts, one
// second apart.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		MaxAttempts: 30,
		Interval:    time.Second,
	}
}

// Attempt describes a single probe invocation. Attempts are handed to the
// poller's observer for logging and then discarded.
type Attempt struct {
	// Index is 1-based.
	Index int
	// Err is nil when the probe reported ready.
	Err error
	At  time.Time
}

// Settings carries the environment-driven configuration recognized by the
// orchestrator. It is loaded once (see the config package) and passed in at
// construction; phases never read the environment themselves.
type Settings struct {
	MaxAttempts     int `config:"READY_MAX_ATTEMPTS" default:"30"`
	IntervalSeconds int `config:"READY_INTERVAL_SECONDS" default:"1"`
}

// PollConfig converts the loaded settings into a poll budget.
func (s Settings) PollConfig() PollConfig {
	return PollConfig{
		MaxAttempts: s.MaxAttempts,
		Interval:    time.Duration(s.IntervalSeconds) * time.Second,
	}
}
