// Package enforce projects registry state onto the remote firewall.
package enforce

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrTransport means the management channel was unreachable or refused
	// auth after bounded retries.
	ErrTransport = errors.New("enforcement channel unreachable")
	// ErrRemoteState means the remote accepted our commands but re-reading
	// its state showed a mismatch with the target.
	ErrRemoteState = errors.New("remote state verification mismatch")
)

// Target is the desired remote configuration: the MAC members of the block
// alias and whether the block rule is enabled. It is derived fresh from the
// registry on every push and never cached.
type Target struct {
	MACs   []string
	Active bool
}

// NewTarget canonicalizes the member list (sorted, deduplicated) so equal
// registries compare equal regardless of insertion order.
func NewTarget(macs []string, active bool) Target {
	seen := make(map[string]struct{}, len(macs))
	out := make([]string, 0, len(macs))
	for _, m := range macs {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return Target{MACs: out, Active: active}
}

// Observed is the remote firewall state as read back over the channel.
type Observed struct {
	MACs        []string
	RuleEnabled bool
}

// Matches reports whether the observed state realizes the target.
func (o Observed) Matches(t Target) bool {
	if o.RuleEnabled != t.Active {
		return false
	}
	if len(o.MACs) != len(t.MACs) {
		return false
	}
	macs := append([]string(nil), o.MACs...)
	sort.Strings(macs)
	for i, m := range macs {
		if m != t.MACs[i] {
			return false
		}
	}
	return true
}

// Enforcer is the port to the remote firewall. Implementations must be
// idempotent: applying an already-realized target issues no mutating
// commands and succeeds.
type Enforcer interface {
	Apply(ctx context.Context, target Target) error
	ReadRemoteState(ctx context.Context) (Observed, error)
}
