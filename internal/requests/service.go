package requests

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/khadamati/khadamati/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Catalog resolves the providers and services a request refers to.
// Implementations return an error matching ErrNotFound for unknown ids.
type Catalog interface {
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
}

// CreateInput is the payload of a new service request. The customer is the
// calling actor.
type CreateInput struct {
	ProviderID    int64
	ServiceID     int64
	Details       string
	ScheduledDate string
	Price         float64
}

type Options struct {
	Policy Policy
	Bus    Publisher
	Clock  Clock
	// Location interprets scheduled dates without a zone. Defaults to time.Local.
	Location *time.Location
}

// Service is the entry point of the lifecycle engine: creation, reads,
// transitions and aggregates.
type Service struct {
	store   Store
	catalog Catalog
	machine *Machine
	agg     *Aggregator
	bus     Publisher
	now     Clock
	loc     *time.Location
}

func NewService(store Store, catalog Catalog, opts Options) *Service {
	if opts.Bus == nil {
		opts.Bus = nopPublisher{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		store:   store,
		catalog: catalog,
		machine: NewMachine(store, opts.Policy, opts.Bus, opts.Clock),
		agg:     NewAggregator(store),
		bus:     opts.Bus,
		now:     opts.Clock,
		loc:     opts.Location,
	}
}

func (s *Service) Policy() Policy {
	return s.machine.Policy()
}

func (s *Service) Aggregator() *Aggregator {
	return s.agg
}

// Create validates in against the catalog and stores a new pending request
// owned by actor.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*domain.ServiceRequest, error) {
	if !actor.IsCustomer() {
		return nil, errors.Wrapf(ErrUnauthorized, "role %q cannot request services", actor.Role)
	}

	details := strings.TrimSpace(in.Details)
	if details == "" {
		return nil, errors.Wrap(ErrValidation, "details is required")
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return nil, errors.Wrapf(ErrValidation, "price must be a non-negative number, got %v", in.Price)
	}
	scheduled, err := s.ParseScheduledDate(in.ScheduledDate)
	if err != nil {
		return nil, err
	}
	if scheduled.Before(s.now()) {
		return nil, errors.Wrapf(ErrValidation, "scheduled_date %s is in the past", scheduled.Format(time.RFC3339))
	}

	provider, err := s.catalog.GetProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	svc, err := s.catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != provider.ID {
		return nil, errors.Wrapf(ErrValidation, "service %d is not offered by provider %d", svc.ID, provider.ID)
	}

	req, err := s.store.Create(ctx, &domain.ServiceRequest{
		CustomerID:    actor.ID,
		ProviderID:    provider.ID,
		ServiceID:     svc.ID,
		Details:       details,
		ScheduledDate: scheduled,
		Price:         in.Price,
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("service request created",
		zap.String("namespace", "lifecycle"),
		zap.Int64("request_id", req.ID),
		zap.Int64("customer_id", req.CustomerID),
		zap.Int64("provider_id", req.ProviderID),
	)
	s.bus.Publish(TopicCreated, Transition{
		Request: req,
		To:      domain.StatusPending,
		Actor:   actor,
		Action:  ActionCreate,
		At:      s.now(),
	})
	return req, nil
}

// ParseScheduledDate accepts the common date layouts (RFC 3339, datetime-local,
// "2006-01-02 15:04", ...). Dates without a zone are read in the service location.
func (s *Service) ParseScheduledDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.Wrap(ErrValidation, "scheduled_date is required")
	}
	t, err := dateparse.ParseIn(v, s.loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrValidation, "scheduled_date %q is not a valid date", v)
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*domain.ServiceRequest, error) {
	return s.store.List(ctx, filter)
}

// Transition applies target to request id on behalf of actor.
func (s *Service) Transition(ctx context.Context, id int64, target domain.RequestStatus, actor Actor) (*domain.ServiceRequest, error) {
	req, err := s.machine.Apply(ctx, id, target, actor)
	if err != nil {
		zap.L().Warn("service request transition refused",
			zap.String("namespace", "lifecycle"),
			zap.Int64("request_id", id),
			zap.String("target", target.String()),
			zap.Int64("actor_id", actor.ID),
			zap.String("actor_role", actor.Role),
			zap.Error(err),
		)
		return nil, err
	}
	zap.L().Info("service request transitioned",
		zap.String("namespace", "lifecycle"),
		zap.Int64("request_id", id),
		zap.String("status", req.Status.String()),
		zap.Int64("actor_id", actor.ID),
	)
	return req, nil
}

// Act applies a named action (accept, reject, complete, cancel).
func (s *Service) Act(ctx context.Context, id int64, action string, actor Actor) (*domain.ServiceRequest, error) {
	target, ok := TargetForAction(action)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidTransition, "unknown action %q", action)
	}
	return s.Transition(ctx, id, target, actor)
}

func (s *Service) ProviderEarnings(ctx context.Context, providerID int64) (float64, error) {
	return s.agg.ProviderEarnings(ctx, providerID)
}
