package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"homeguard/backend/app/enforce"
	"homeguard/backend/app/events"
	"homeguard/backend/app/models"
	"homeguard/backend/app/repo"

	"github.com/rs/zerolog"
)

// ToggleService is the single owner of the Inactive/Active transition. One
// enforcement push runs at a time; a second caller gets ErrConflict rather
// than queuing behind the router.
type ToggleService struct {
	mu        sync.Mutex
	devices   *RegistryService
	state     *repo.ControlStateRepository
	audit     *repo.AuditRepository
	enforcer  enforce.Enforcer
	platforms []enforce.PlatformAdapter
	events    *events.Publisher
	log       zerolog.Logger
}

func NewToggleService(devices *RegistryService, state *repo.ControlStateRepository, audit *repo.AuditRepository, enforcer enforce.Enforcer, log zerolog.Logger) *ToggleService {
	return &ToggleService{devices: devices, state: state, audit: audit, enforcer: enforcer, log: log}
}

// WithPlatforms registers vendor adapters fanned out after a successful
// firewall apply.
func (s *ToggleService) WithPlatforms(adapters ...enforce.PlatformAdapter) *ToggleService {
	s.platforms = append(s.platforms, adapters...)
	return s
}

// WithEvents registers the redis publisher. A nil publisher is fine.
func (s *ToggleService) WithEvents(pub *events.Publisher) *ToggleService {
	s.events = pub
	return s
}

// Status returns the persisted control state without touching the router.
func (s *ToggleService) Status() (*models.ControlState, error) {
	return s.state.Load()
}

// Toggle pushes desired on/off state to the firewall and persists it only
// when the push succeeded. Membership is always recomputed from the live
// registry.
func (s *ToggleService) Toggle(ctx context.Context, desired bool, reason, actor string) (*models.ControlState, error) {
	if !s.mu.TryLock() {
		return nil, ErrConflict
	}
	defer s.mu.Unlock()
	return s.applyLocked(ctx, desired, reason, actor, "toggle")
}

// Sync re-applies the current persisted state against the current registry.
// Used after device edits and once at startup to correct drift.
func (s *ToggleService) Sync(ctx context.Context, actor string) (*models.ControlState, error) {
	if !s.mu.TryLock() {
		return nil, ErrConflict
	}
	defer s.mu.Unlock()

	st, err := s.state.Load()
	if err != nil {
		return nil, err
	}
	return s.applyLocked(ctx, st.Active, st.LastChangeReason, actor, "sync")
}

func (s *ToggleService) applyLocked(ctx context.Context, desired bool, reason, actor, action string) (*models.ControlState, error) {
	st, err := s.state.Load()
	if err != nil {
		return nil, err
	}
	macs, err := s.devices.EnabledMACs()
	if err != nil {
		return nil, err
	}
	target := enforce.NewTarget(macs, desired)

	if err := s.enforcer.Apply(ctx, target); err != nil {
		// Persisted state stays at the last successfully applied value.
		return nil, err
	}

	prev := st.Active
	st.Active = desired
	if action == "toggle" {
		st.LastChangeTime = time.Now()
		st.LastChangeReason = reason
	}
	if err := s.state.Save(st); err != nil {
		return nil, fmt.Errorf("persist control state: %w", err)
	}
	if err := s.audit.Append(&models.AuditEntry{
		Actor:     actor,
		Action:    "controls." + action,
		Detail:    reason,
		PrevState: prev,
		NewState:  desired,
	}); err != nil {
		return nil, err
	}

	s.log.Info().Str("action", action).Bool("active", desired).Int("members", len(target.MACs)).Str("actor", actor).Msg("enforcement applied")
	s.events.PublishToggle(ctx, events.ToggleEvent{Active: desired, Reason: reason, Actor: actor, At: time.Now()})

	if prev != desired {
		s.fanOutPlatforms(ctx, desired)
	}
	return st, nil
}

// fanOutPlatforms mirrors the flag to vendor surfaces. Failures are logged,
// never propagated: the firewall already holds the authoritative state.
func (s *ToggleService) fanOutPlatforms(ctx context.Context, enabled bool) {
	for _, p := range s.platforms {
		if err := p.Apply(ctx, enabled); err != nil {
			s.log.Warn().Err(err).Str("platform", p.Name()).Msg("platform sync failed")
		}
	}
}
