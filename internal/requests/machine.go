package requests

import (
	"context"
	"time"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/pkg/errors"
)

// Machine validates and applies status transitions.
type Machine struct {
	store  Store
	policy Policy
	bus    Publisher
	now    Clock
}

func NewMachine(store Store, policy Policy, bus Publisher, now Clock) *Machine {
	if bus == nil {
		bus = nopPublisher{}
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{store: store, policy: policy, bus: bus, now: now}
}

func (m *Machine) Policy() Policy {
	return m.policy
}

// Reachable reports whether the lifecycle has an edge from -> to for actor.
// in_progress -> cancelled exists only when the policy opens it to providers
// or when an admin forces a cancellation under AdminOverride.
func (m *Machine) Reachable(from, to domain.RequestStatus, actor Actor) bool {
	if !to.Valid() || to == domain.StatusPending || from.Terminal() {
		return false
	}
	switch from {
	case domain.StatusPending:
		return to == domain.StatusInProgress || to == domain.StatusCancelled
	case domain.StatusInProgress:
		switch to {
		case domain.StatusCompleted:
			return true
		case domain.StatusCancelled:
			return m.policy.ProviderCancelInProgress || (m.policy.AdminOverride && actor.IsAdmin())
		}
	}
	return false
}

// Apply moves request id to target on behalf of actor. A failed call leaves
// the stored request untouched.
func (m *Machine) Apply(ctx context.Context, id int64, target domain.RequestStatus, actor Actor) (*domain.ServiceRequest, error) {
	if !target.Valid() {
		return nil, errors.Wrapf(ErrInvalidTransition, "unknown status %q", target)
	}
	req, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := req.Status
	if !m.Reachable(from, target, actor) {
		return nil, errors.Wrapf(ErrInvalidTransition, "request %d cannot move from %s to %s", id, from, target)
	}
	if !m.policy.CanTransition(actor, req, target) {
		return nil, errors.Wrapf(ErrForbidden, "%s %d may not move request %d to %s", actor.Role, actor.ID, id, target)
	}

	updated, err := m.store.UpdateStatus(ctx, id, from, target)
	if errors.Is(err, ErrStaleStatus) {
		// another writer won the race; report it, never retry
		return nil, errors.Wrapf(ErrInvalidTransition, "concurrent update: %v", err)
	}
	if err != nil {
		return nil, err
	}

	m.bus.Publish(TopicTransitioned, Transition{
		Request: updated,
		From:    from,
		To:      target,
		Actor:   actor,
		Action:  ActionFor(from, target),
		At:      m.now(),
	})
	return updated, nil
}
