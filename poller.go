package vanguard

import (
	"context"
	"fmt"
	"time"
)

// SleepFunc suspends the poll loop between attempts. The default honors
// context cancellation; tests inject a recording fake so the loop runs
// without wall-clock delay.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller executes a Probe repeatedly with a fixed inter-attempt delay and a
// maximum attempt count. The fixed (not exponential) interval is deliberate:
// the awaited dependency is expected to resolve within a single-digit-second
// budget, and a short constant delay minimizes latency to continue.
type Poller struct {
	Config PollConfig
	// Sleep defaults to a context-aware time.Sleep.
	Sleep SleepFunc
	// Observe, if set, receives every attempt outcome before the loop
	// decides whether to continue. Used for logging.
	Observe func(Attempt)
}

// Await polls the probe until it reports ready or the attempt budget is
// exhausted. Success short-circuits: a ready probe on attempt k means
// exactly k probe calls and k-1 sleeps. MaxAttempts <= 0 fails without
// invoking the probe at all, so a misconfigured zero budget can never look
// like an instant pass.
func (p Poller) Await(ctx context.Context, probe Probe) error {
	if p.Config.MaxAttempts <= 0 {
		return fmt.Errorf("%w: attempt budget is %d", ErrReadinessTimeout, p.Config.MaxAttempts)
	}

	sleep := p.Sleep
	if sleep == nil {
		sleep = defaultSleep
	}

	for attempt := 1; attempt <= p.Config.MaxAttempts; attempt++ {
		err := checkSafe(ctx, probe)
		if p.Observe != nil {
			p.Observe(Attempt{Index: attempt, Err: err, At: time.Now()})
		}
		if err == nil {
			return nil
		}
		if attempt < p.Config.MaxAttempts {
			if serr := sleep(ctx, p.Config.Interval); serr != nil {
				return fmt.Errorf("%w: %v", ErrReadinessTimeout, serr)
			}
		}
	}
	return fmt.Errorf("%w: %d attempts made", ErrReadinessTimeout, p.Config.MaxAttempts)
}

// checkSafe invokes a probe with panic recovery. A panicking probe counts
// as a failed attempt, same as any probe error.
func checkSafe(ctx context.Context, probe Probe) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in Check func: %v", r)
		}
	}()
	return probe.Check(ctx)
}
