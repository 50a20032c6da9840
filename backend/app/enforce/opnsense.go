package enforce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Commands is the router-side command set. Defaults target OPNsense's
// configd helpers but every command is configurable, so the same adapter
// drives any box that can print and accept a MAC list.
type Commands struct {
	ShowAlias   string // prints current alias members, one MAC per line
	SetAlias    string // replaces alias membership with MACs read from stdin
	RuleStatus  string // prints "enabled" or "disabled"
	EnableRule  string
	DisableRule string
	Reload      string // reloads the filter so changes take effect
}

func DefaultCommands(alias, rule string) Commands {
	return Commands{
		ShowAlias:   fmt.Sprintf("configctl filter list_alias %s", alias),
		SetAlias:    fmt.Sprintf("configctl filter set_alias %s", alias),
		RuleStatus:  fmt.Sprintf("configctl filter rule_status %s", rule),
		EnableRule:  fmt.Sprintf("configctl filter enable_rule %s", rule),
		DisableRule: fmt.Sprintf("configctl filter disable_rule %s", rule),
		Reload:      "configctl filter reload",
	}
}

// OPNsense converges the router's block alias and rule onto a Target.
// Transient channel failures are retried with capped exponential backoff;
// after a successful push the remote state is re-read and verified.
type OPNsense struct {
	runner     Runner
	cmds       Commands
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	log        zerolog.Logger
}

func NewOPNsense(runner Runner, cmds Commands, maxRetries int, baseDelay time.Duration, log zerolog.Logger) *OPNsense {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	return &OPNsense{
		runner:     runner,
		cmds:       cmds,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   15 * time.Second,
		log:        log,
	}
}

// run executes one remote command with bounded retries. Exhaustion wraps
// ErrTransport so callers can classify without inspecting the channel error.
func (a *OPNsense) run(ctx context.Context, command, stdin string) (string, error) {
	delay := a.baseDelay
	var lastErr error
	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		out, err := a.runner.Run(ctx, command, stdin)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		a.log.Warn().Err(err).Str("command", command).Int("attempt", attempt).Msg("remote command failed")
		if attempt == a.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", ErrTransport, ctx.Err())
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * 1.5)
		if delay > a.maxDelay {
			delay = a.maxDelay
		}
	}
	return "", fmt.Errorf("%w: %v", ErrTransport, lastErr)
}

func (a *OPNsense) ReadRemoteState(ctx context.Context) (Observed, error) {
	aliasOut, err := a.run(ctx, a.cmds.ShowAlias, "")
	if err != nil {
		return Observed{}, err
	}
	ruleOut, err := a.run(ctx, a.cmds.RuleStatus, "")
	if err != nil {
		return Observed{}, err
	}
	return Observed{
		MACs:        parseMACList(aliasOut),
		RuleEnabled: strings.EqualFold(strings.TrimSpace(ruleOut), "enabled"),
	}, nil
}

// Apply converges remote state to target. Membership is replaced before the
// rule bit is flipped so the blast radius of a mid-sequence failure is
// "alias stale", never "some devices blocked, some not": the rule flip is a
// single remote command. Applying an already-realized target issues no
// mutating commands.
func (a *OPNsense) Apply(ctx context.Context, target Target) error {
	obs, err := a.ReadRemoteState(ctx)
	if err != nil {
		return err
	}

	mutated := false
	if !sameMembers(obs.MACs, target.MACs) {
		if _, err := a.run(ctx, a.cmds.SetAlias, strings.Join(target.MACs, "\n")+"\n"); err != nil {
			return err
		}
		mutated = true
		a.log.Info().Int("members", len(target.MACs)).Msg("alias membership replaced")
	}
	if obs.RuleEnabled != target.Active {
		cmd := a.cmds.DisableRule
		if target.Active {
			cmd = a.cmds.EnableRule
		}
		if _, err := a.run(ctx, cmd, ""); err != nil {
			return err
		}
		mutated = true
		a.log.Info().Bool("active", target.Active).Msg("block rule flipped")
	}
	if !mutated {
		return nil
	}

	if _, err := a.run(ctx, a.cmds.Reload, ""); err != nil {
		return err
	}

	verified, err := a.ReadRemoteState(ctx)
	if err != nil {
		return err
	}
	if !verified.Matches(target) {
		return fmt.Errorf("%w: want %d members active=%v, got %d members enabled=%v",
			ErrRemoteState, len(target.MACs), target.Active, len(verified.MACs), verified.RuleEnabled)
	}
	return nil
}

func parseMACList(out string) []string {
	var macs []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		macs = append(macs, strings.ToUpper(line))
	}
	return macs
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, m := range a {
		set[m] = struct{}{}
	}
	for _, m := range b {
		if _, ok := set[m]; !ok {
			return false
		}
	}
	return true
}
