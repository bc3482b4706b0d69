// Package probe ships concrete readiness probes: DNS resolution, TCP dial,
// HTTP status and Postgres ping. Each is a side-effect-free check that
// answers whether a dependency is usable right now.
package probe

import (
	"context"
	"fmt"
	"net"
)

// HostResolver resolves a host name to addresses. Satisfied by
// *net.Resolver; tests inject a fake.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DNS reports ready once Host resolves to at least one address. Name
// resolution is an indirect readiness signal: it tells you the dependency
// is discoverable, not that it serves traffic. Pair with TCP or HTTP when
// that distinction matters.
type DNS struct {
	Host string
	// Resolver defaults to net.DefaultResolver.
	Resolver HostResolver
}

func (d DNS) Check(ctx context.Context) error {
	resolver := d.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupHost(ctx, d.Host)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", d.Host, err)
	}
	if len(addrs) == 0 {
		return fmt.Errorf("resolve %q: no addresses", d.Host)
	}
	return nil
}
