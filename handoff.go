package vanguard

import (
	"fmt"
	"os"
	"os/exec"
)

// ExecFunc replaces the current process image with the target executable.
// On success it never returns; the target inherits this process's PID and
// signal context. Tests inject a recording fake.
type ExecFunc func(path string, argv []string, env []string) error

// Handoff is the terminal operation of a startup run: it locates the target
// executable and transfers control to it in place. Spawning a supervised
// child instead would break the signal delivery a container runtime expects
// for its foreground process, so the replace is not negotiable on platforms
// that support it.
type Handoff struct {
	Command string
	Args    []string
	// Env defaults to the current process environment.
	Env []string

	execFn ExecFunc
}

// run resolves the target on PATH and execs it. It returns only on failure:
// a missing target maps to exit code 127, an exec failure to 126.
func (h Handoff) run() error {
	path, err := exec.LookPath(h.Command)
	if err != nil {
		return newPhaseError(PhaseExec,
			fmt.Errorf("%w: %v", ErrHandoffFailure, err), h, 127)
	}

	argv := append([]string{h.Command}, h.Args...)
	env := h.Env
	if env == nil {
		env = os.Environ()
	}

	execFn := h.execFn
	if execFn == nil {
		execFn = replaceProcess
	}
	if err := execFn(path, argv, env); err != nil {
		return newPhaseError(PhaseExec,
			fmt.Errorf("%w: %v", ErrHandoffFailure, err), h, 126)
	}
	return nil
}
