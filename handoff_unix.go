//go:build unix

package vanguard

import "golang.org/x/sys/unix"

// replaceProcess performs the exec(2) replace. The calling process image
// ends here; PID and signal context pass to the target.
func replaceProcess(path string, argv []string, env []string) error {
	return unix.Exec(path, argv, env)
}
