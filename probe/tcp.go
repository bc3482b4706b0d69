package probe

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCP reports ready once a connection to Addr ("host:port") succeeds. The
// connection is closed immediately; nothing is written.
type TCP struct {
	Addr string
	// DialTimeout bounds a single attempt, independent of the poller's
	// overall budget. Defaults to 2s.
	DialTimeout time.Duration
}

func (t TCP) Check(ctx context.Context) error {
	timeout := t.DialTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.Addr)
	if err != nil {
		return fmt.Errorf("dial %q: %w", t.Addr, err)
	}
	return conn.Close()
}
