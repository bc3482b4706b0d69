package probe

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Postgres reports ready once a connection to DSN can be established and
// pinged. The connection is torn down after every check; no pool is kept,
// since the orchestrator's process image is about to be replaced anyway.
type Postgres struct {
	DSN string
}

func (p Postgres) Check(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, p.DSN)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)
	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
