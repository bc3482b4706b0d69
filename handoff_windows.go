//go:build windows

package vanguard

import (
	"os"
	"os/exec"
)

// replaceProcess approximates exec(2) on Windows, which has no in-place
// process replace: spawn the target, wait for it, and forward its exit
// code. Console control events are not forwarded to the child, so signal
// delivery differs from the Unix behavior.
func replaceProcess(path string, argv []string, env []string) error {
	cmd := exec.Command(path, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return err
	}
	os.Exit(0)
	return nil
}
