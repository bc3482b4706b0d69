package vanguard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStep records invocations and can fail, panic, or register cleanup.
type fakeStep struct {
	name      string
	calls     int
	willErr   bool
	willPanic bool
	closeLog  *[]string
}

func (f *fakeStep) Run(ctx context.Context) error {
	f.calls++
	if f.willPanic {
		panic("boom")
	}
	if f.willErr {
		return errors.New("step error")
	}
	return nil
}

func (f *fakeStep) Close() {
	if f.closeLog != nil {
		*f.closeLog = append(*f.closeLog, f.name)
	}
}

// fakeExec records the handoff instead of replacing the process image.
type fakeExec struct {
	calls int
	path  string
	argv  []string
	env   []string
	err   error
}

func (f *fakeExec) fn(path string, argv []string, env []string) error {
	f.calls++
	f.path = path
	f.argv = argv
	f.env = env
	return f.err
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestOrchestrator_SuccessPath(t *testing.T) {
	step := &fakeStep{}
	probe := &countingProbe{readyOn: 1}
	execFn := &fakeExec{}

	err := New(PollConfig{MaxAttempts: 30, Interval: time.Second}).
		Init(step).
		Await(probe).
		Exec("sh", "-c", "true").
		WithSleep(noSleep).
		WithExecFunc(execFn.fn).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, step.calls)
	assert.Equal(t, 1, probe.calls)
	assert.Equal(t, 1, execFn.calls)
	assert.Equal(t, []string{"sh", "-c", "true"}, execFn.argv)
	assert.NotEmpty(t, execFn.env)
}

func TestOrchestrator_PollsUntilReady(t *testing.T) {
	probe := &countingProbe{readyOn: 6}
	execFn := &fakeExec{}
	sleeps := 0

	err := New(PollConfig{MaxAttempts: 30, Interval: time.Second}).
		Init(&fakeStep{}).
		Await(probe).
		Exec("sh").
		WithSleep(func(context.Context, time.Duration) error { sleeps++; return nil }).
		WithExecFunc(execFn.fn).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 6, probe.calls)
	assert.Equal(t, 5, sleeps)
	assert.Equal(t, 1, execFn.calls)
}

func TestOrchestrator_PollExhaustionFails(t *testing.T) {
	probe := &countingProbe{}
	execFn := &fakeExec{}
	sleeps := 0

	err := New(PollConfig{MaxAttempts: 30, Interval: time.Second}).
		Init(&fakeStep{}).
		Await(probe).
		Exec("sh").
		WithSleep(func(context.Context, time.Duration) error { sleeps++; return nil }).
		WithExecFunc(execFn.fn).
		Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadinessTimeout)
	assert.Equal(t, 30, probe.calls)
	assert.Equal(t, 29, sleeps)
	assert.Equal(t, 0, execFn.calls, "handoff must not run after poll exhaustion")

	var pe PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhasePoll, pe.Phase)
	assert.Equal(t, 1, ExitCode(err))
}

func TestOrchestrator_InitFailureShortCircuits(t *testing.T) {
	step := &fakeStep{willErr: true}
	probe := &countingProbe{readyOn: 1}
	execFn := &fakeExec{}

	err := New(DefaultPollConfig()).
		Init(step).
		Await(probe).
		Exec("sh").
		WithSleep(noSleep).
		WithExecFunc(execFn.fn).
		Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitFailure)
	assert.Equal(t, 0, probe.calls, "poller must never run after an init failure")
	assert.Equal(t, 0, execFn.calls)

	var pe PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseInit, pe.Phase)
	assert.Contains(t, pe.ComponentName, "fakeStep")
	assert.Equal(t, 1, ExitCode(err))
}

func TestOrchestrator_InitPanicIsInitFailure(t *testing.T) {
	probe := &countingProbe{readyOn: 1}

	err := New(DefaultPollConfig()).
		Init(&fakeStep{willPanic: true}).
		Await(probe).
		Exec("sh").
		WithSleep(noSleep).
		Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitFailure)
	assert.Equal(t, 0, probe.calls)
}

func TestOrchestrator_StepsRunInOrderAndStopAtFirstFailure(t *testing.T) {
	first := &fakeStep{}
	second := &fakeStep{willErr: true}
	third := &fakeStep{}

	err := New(DefaultPollConfig()).
		Init(first, second, third).
		Exec("sh").
		WithSleep(noSleep).
		Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 0, third.calls)
}

func TestOrchestrator_ClosersRunLIFOOnFailure(t *testing.T) {
	var closed []string
	first := &fakeStep{name: "first", closeLog: &closed}
	second := &fakeStep{name: "second", closeLog: &closed}

	err := New(PollConfig{MaxAttempts: 1}).
		Init(first, second).
		Await(&countingProbe{}).
		Exec("sh").
		WithSleep(noSleep).
		Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"second", "first"}, closed)
}

func TestOrchestrator_MultipleProbesAllMustSucceed(t *testing.T) {
	ready := &countingProbe{readyOn: 2}
	alsoReady := &countingProbe{readyOn: 1}
	execFn := &fakeExec{}

	err := New(PollConfig{MaxAttempts: 10, Interval: time.Millisecond}).
		Await(ready, alsoReady).
		Exec("sh").
		WithSleep(noSleep).
		WithExecFunc(execFn.fn).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, ready.calls)
	assert.Equal(t, 1, alsoReady.calls)
	assert.Equal(t, 1, execFn.calls)

	neverReady := &countingProbe{}
	execFn2 := &fakeExec{}
	err = New(PollConfig{MaxAttempts: 2, Interval: time.Millisecond}).
		Await(&countingProbe{readyOn: 1}, neverReady).
		Exec("sh").
		WithSleep(noSleep).
		WithExecFunc(execFn2.fn).
		Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReadinessTimeout)
	assert.Equal(t, 0, execFn2.calls)
}

func TestOrchestrator_HandoffTargetNotFound(t *testing.T) {
	err := New(DefaultPollConfig()).
		Await(&countingProbe{readyOn: 1}).
		Exec("definitely-not-on-path-0b1c2d").
		WithSleep(noSleep).
		Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandoffFailure)
	assert.Equal(t, 127, ExitCode(err))

	var pe PhaseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, PhaseExec, pe.Phase)
}

func TestOrchestrator_HandoffExecFailure(t *testing.T) {
	execFn := &fakeExec{err: errors.New("exec format error")}

	err := New(DefaultPollConfig()).
		Exec("sh").
		WithExecFunc(execFn.fn).
		Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandoffFailure)
	assert.Equal(t, 126, ExitCode(err))
}

func TestOrchestrator_WithEnvOverridesHandoffEnvironment(t *testing.T) {
	execFn := &fakeExec{}

	err := New(DefaultPollConfig()).
		Exec("sh").
		WithEnv([]string{"ONLY=this"}).
		WithExecFunc(execFn.fn).
		Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"ONLY=this"}, execFn.env)
}

// Identical collaborator outcomes must produce identical phase transition
// sequences across runs.
func TestOrchestrator_Deterministic(t *testing.T) {
	run := func() (stepCalls, probeCalls, execCalls int, err error) {
		step := &fakeStep{}
		probe := &countingProbe{readyOn: 4}
		execFn := &fakeExec{}
		err = New(PollConfig{MaxAttempts: 10, Interval: time.Second}).
			Init(step).
			Await(probe).
			Exec("sh").
			WithSleep(noSleep).
			WithExecFunc(execFn.fn).
			Run(context.Background())
		return step.calls, probe.calls, execFn.calls, err
	}

	s1, p1, e1, err1 := run()
	s2, p2, e2, err2 := run()
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, p1, p2)
	assert.Equal(t, e1, e2)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
	assert.Equal(t, 127, ExitCode(newPhaseError(PhaseExec, ErrHandoffFailure, nil, 127)))
	assert.Equal(t, 1, ExitCode(newPhaseError(PhasePoll, ErrReadinessTimeout, nil, 1)))
}

func TestSettings_PollConfig(t *testing.T) {
	s := Settings{MaxAttempts: 5, IntervalSeconds: 2}
	cfg := s.PollConfig()
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Interval)
}
