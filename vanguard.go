// Package vanguard orchestrates container startup: ordered init steps,
// bounded readiness polling, then a terminal process handoff that replaces
// the orchestrator with the target service.
package vanguard

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// closerFunc is a function that performs cleanup operations.
type closerFunc func()

// Orchestrator sequences InitStep -> Poller -> Handoff with fail-fast
// semantics between phases. The phase machine is INIT -> POLLING -> HANDOFF
// on the success path; any phase failure moves to FAILED and nothing is
// retried. Exactly one of init failure, poll exhaustion, or successful
// handoff terminates a run.
type Orchestrator struct {
	cfg     PollConfig
	steps   []InitStep
	probes  []Probe
	handoff Handoff
	sleep   SleepFunc
	logger  zerolog.Logger
}

// New creates an orchestrator with the given wait budget and no steps,
// probes or target.
func New(cfg PollConfig) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
}

// Init adds initialization steps (fluent method). Steps run sequentially,
// in registration order, before any polling.
func (o *Orchestrator) Init(steps ...InitStep) *Orchestrator {
	o.steps = append(o.steps, steps...)
	return o
}

// Await adds readiness probes (fluent method). A single probe is polled
// strictly sequentially; multiple probes are polled concurrently, each with
// its own attempt budget, and all must succeed before handoff.
func (o *Orchestrator) Await(probes ...Probe) *Orchestrator {
	o.probes = append(o.probes, probes...)
	return o
}

// Exec sets the handoff target (fluent method). The target inherits the
// current environment unless WithEnv overrides it.
func (o *Orchestrator) Exec(command string, args ...string) *Orchestrator {
	o.handoff.Command = command
	o.handoff.Args = args
	return o
}

// WithEnv overrides the environment passed to the handoff target.
func (o *Orchestrator) WithEnv(env []string) *Orchestrator {
	o.handoff.Env = env
	return o
}

// WithLogger sets the logger used for phase-boundary progress lines.
func (o *Orchestrator) WithLogger(logger zerolog.Logger) *Orchestrator {
	o.logger = logger
	return o
}

// WithSleep overrides the poller's sleep function. Used by tests to run the
// poll loop without wall-clock delay.
func (o *Orchestrator) WithSleep(sleep SleepFunc) *Orchestrator {
	o.sleep = sleep
	return o
}

// WithExecFunc overrides the process-replace primitive. Used by tests to
// observe the handoff without giving up the test process.
func (o *Orchestrator) WithExecFunc(fn ExecFunc) *Orchestrator {
	o.handoff.execFn = fn
	return o
}

// Run drives the startup sequence. On success it does not return: the
// process image has been replaced by the target. On failure it returns a
// PhaseError naming the phase; closers registered by init steps run in LIFO
// order before it returns.
func (o *Orchestrator) Run(ctx context.Context) error {
	var closers []closerFunc
	defer func() { combineClosers(closers)() }()

	// INIT: each step gets a single attempt; the first failure aborts the
	// run before any polling happens.
	for _, step := range o.steps {
		o.logger.Info().
			Str("phase", string(PhaseInit)).
			Str("step", componentName(step)).
			Msg("running init step")
		if err := runStepSafe(ctx, step); err != nil {
			return err
		}
		if closer, ok := step.(Closer); ok {
			closers = append(closers, closer.Close)
		}
	}

	// POLLING
	if err := o.awaitAll(ctx); err != nil {
		return err
	}

	// HANDOFF
	o.logger.Info().
		Str("phase", string(PhaseExec)).
		Str("command", o.handoff.Command).
		Strs("args", o.handoff.Args).
		Msg("handing off process")
	return o.handoff.run()
}

// RunOrExit runs the orchestration and, on failure, logs the phase error
// and exits with its mapped code. It returns only when a test exec function
// was injected.
func (o *Orchestrator) RunOrExit(ctx context.Context) {
	if err := o.Run(ctx); err != nil {
		o.logger.Error().
			Err(err).
			Int("exit_code", ExitCode(err)).
			Msg("startup failed")
		os.Exit(ExitCode(err))
	}
}

// awaitAll polls every registered probe to readiness. The common
// single-probe case stays on the calling goroutine; probe groups fan out
// and join before the handoff phase.
func (o *Orchestrator) awaitAll(ctx context.Context) error {
	if len(o.probes) == 0 {
		return nil
	}

	o.logger.Info().
		Str("phase", string(PhasePoll)).
		Int("probes", len(o.probes)).
		Int("max_attempts", o.cfg.MaxAttempts).
		Dur("interval", o.cfg.Interval).
		Msg("waiting for readiness")

	if len(o.probes) == 1 {
		return o.awaitOne(ctx, o.probes[0])
	}

	errGroup, groupCtx := errgroup.WithContext(ctx)
	for _, probe := range o.probes {
		probe := probe
		errGroup.Go(func() error {
			return o.awaitOne(groupCtx, probe)
		})
	}
	return errGroup.Wait()
}

func (o *Orchestrator) awaitOne(ctx context.Context, probe Probe) error {
	name := componentName(probe)
	poller := Poller{
		Config: o.cfg,
		Sleep:  o.sleep,
		Observe: func(a Attempt) {
			if a.Err == nil {
				o.logger.Info().
					Str("probe", name).
					Int("attempt", a.Index).
					Msg("dependency ready")
				return
			}
			o.logger.Debug().
				Str("probe", name).
				Int("attempt", a.Index).
				Int("max_attempts", o.cfg.MaxAttempts).
				Err(a.Err).
				Msg("not ready yet")
		},
	}
	if err := poller.Await(ctx, probe); err != nil {
		return newPhaseError(PhasePoll, err, probe, 1)
	}
	return nil
}

// runStepSafe calls an init step's Run method with panic recovery. Both
// panics and errors become init-phase failures.
func runStepSafe(ctx context.Context, step InitStep) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPhaseError(PhaseInit,
				fmt.Errorf("%w: panic in Run func: %v", ErrInitFailure, r), step, 1)
		}
	}()
	if rerr := step.Run(ctx); rerr != nil {
		err = newPhaseError(PhaseInit,
			fmt.Errorf("%w: %v", ErrInitFailure, rerr), step, 1)
	}
	return err
}

// combineClosers returns a function that invokes all closers in LIFO
// (reverse) order.
func combineClosers(closers []closerFunc) closerFunc {
	return func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
