package enforce

import (
	"context"

	"github.com/rs/zerolog"
)

// PlatformAdapter mirrors the global on/off flag onto a per-vendor parental
// control surface (console, family-safety account). Adapters are best-effort
// collaborators: the firewall is the source of truth and a vendor failure
// never rolls back a toggle.
type PlatformAdapter interface {
	Name() string
	Apply(ctx context.Context, enabled bool) error
}

// LogPlatform stands in for vendor integrations that are not wired up yet.
type LogPlatform struct {
	Platform string
	Log      zerolog.Logger
}

func (p *LogPlatform) Name() string { return p.Platform }

func (p *LogPlatform) Apply(ctx context.Context, enabled bool) error {
	p.Log.Info().Str("platform", p.Platform).Bool("enabled", enabled).Msg("platform state recorded")
	return nil
}
