// Package step ships concrete init steps: a one-shot external command and a
// Postgres schema migration. Steps get a single attempt; the orchestrator
// never retries them.
package step

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Command runs an external program once and fails the startup if it exits
// non-zero. Output is inherited so the command's own progress lands in the
// container log.
type Command struct {
	Name string
	Args []string
	// Env defaults to the current process environment.
	Env []string
	Dir string
}

func (c Command) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = c.Dir
	if c.Env != nil {
		cmd.Env = c.Env
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("init command %q: %w", c.Name, err)
	}
	return nil
}
