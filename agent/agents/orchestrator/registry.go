package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/contract"
	statex "github.com/tanpawarit/Chative-Restaurant-Concierge/agent/state"
)

// Builder creates the orchestrator for a session profile.
type Builder func(ctx context.Context, p *statex.SessionProfile) (*Orchestrator, error)

// Registry keeps one orchestrator per customer. Profiles are persisted so a
// session can be rebuilt, with an empty transcript, after a restart.
type Registry struct {
	mu       sync.Mutex
	profiles statex.ProfileStore
	build    Builder
	sessions map[int64]*Orchestrator
}

func NewRegistry(profiles statex.ProfileStore, build Builder) (*Registry, error) {
	if profiles == nil {
		return nil, errors.New("profile store is required")
	}
	if build == nil {
		return nil, errors.New("session builder is required")
	}
	return &Registry{
		profiles: profiles,
		build:    build,
		sessions: make(map[int64]*Orchestrator),
	}, nil
}

// Open starts a fresh session for the profile, replacing any existing one.
func (r *Registry) Open(ctx context.Context, p *statex.SessionProfile) (*Orchestrator, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", contractx.ErrValidation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o, err := r.build(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("build session %d: %w", p.CustomerID, err)
	}
	if err := r.profiles.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save session profile %d: %w", p.CustomerID, err)
	}

	r.sessions[p.CustomerID] = o
	return o, nil
}

// Get returns the live session, rebuilding it from its stored profile when
// needed. It fails with ErrSessionNotFound when the customer never opened one.
func (r *Registry) Get(ctx context.Context, customerID int64) (*Orchestrator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.sessions[customerID]; ok {
		return o, nil
	}

	p, err := r.profiles.Load(ctx, customerID)
	if errors.Is(err, statex.ErrProfileNotFound) || errors.Is(err, statex.ErrInvalidCustomer) {
		return nil, fmt.Errorf("%w: customer %d", contractx.ErrSessionNotFound, customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session profile %d: %w", customerID, err)
	}

	o, err := r.build(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("rebuild session %d: %w", customerID, err)
	}
	log.Info().Int64("customer_id", customerID).Msg("session rebuilt from stored profile")

	r.sessions[customerID] = o
	return o, nil
}

// MarkPaid records a paid reservation on the live session and its profile.
func (r *Registry) MarkPaid(ctx context.Context, customerID, reservationID int64) error {
	o, err := r.Get(ctx, customerID)
	if err != nil {
		return err
	}
	o.MarkPaid(reservationID)

	p, err := r.profiles.Load(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load session profile %d: %w", customerID, err)
	}
	p.MarkPaid(reservationID)
	if err := r.profiles.Save(ctx, p); err != nil {
		return fmt.Errorf("save session profile %d: %w", customerID, err)
	}
	return nil
}

// Close ends the session and forgets its profile.
func (r *Registry) Close(ctx context.Context, customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, customerID)
	if err := r.profiles.Delete(ctx, customerID); err != nil {
		return fmt.Errorf("delete session profile %d: %w", customerID, err)
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
