package vanguard

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/cleitonmarx/vanguard/internal/reflectx"
)

// Phase identifies where in the startup sequence an error occurred.
type Phase string

const (
	PhaseInit Phase = "init"
	PhasePoll Phase = "poll"
	PhaseExec Phase = "exec"
)

// Sentinel errors for the three terminal failure classes. Every failure is
// terminal for the whole program; nothing is caught-and-continued.
var (
	// ErrInitFailure: an init step's single attempt failed.
	ErrInitFailure = errors.New("init step failed")
	// ErrReadinessTimeout: the poller exhausted its attempt budget.
	ErrReadinessTimeout = errors.New("readiness not achieved within budget")
	// ErrHandoffFailure: the target executable could not be started.
	ErrHandoffFailure = errors.New("process handoff failed")
)

// PhaseError wraps a failure with the phase it occurred in, the component
// that produced it, and the process exit code it maps to.
type PhaseError struct {
	Phase         Phase
	Err           error
	ComponentName string
	Code          int
}

// newPhaseError attaches phase and component context to an error.
func newPhaseError(phase Phase, err error, component any, code int) PhaseError {
	return PhaseError{
		Phase:         phase,
		Err:           err,
		ComponentName: componentName(component),
		Code:          code,
	}
}

// componentName derives a human-readable name from a component's type
// (package.TypeName) or, for functions, the function name.
func componentName(component any) string {
	if component == nil {
		return ""
	}
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Func {
		name, _ := reflectx.FunctionNameAndFileLine(component)
		return name
	}
	return reflectx.TypeName(t)
}

func (e PhaseError) Error() string {
	if e.ComponentName == "" {
		return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("phase %s: %v, component: %s", e.Phase, e.Err, e.ComponentName)
}

func (e PhaseError) Unwrap() error {
	return e.Err
}

// ExitCode maps an orchestration error to the process exit code the
// surrounding container runtime expects: 127 when the handoff target cannot
// be located, 126 when it was found but could not be started, 1 for init
// and poll failures.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var pe PhaseError
	if errors.As(err, &pe) && pe.Code != 0 {
		return pe.Code
	}
	return 1
}
