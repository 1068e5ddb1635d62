package requests

import (
	"context"
	"time"

	"github.com/khadamati/khadamati/internal/domain"
)

// Filter selects requests for Store.List. Zero values mean "any".
type Filter struct {
	CustomerID int64
	ProviderID int64
	Status     domain.RequestStatus
	// Order is "asc" for oldest first; anything else lists most recent first.
	Order string
	// Limit caps the result size when > 0.
	Limit int
}

// Store persists ServiceRequest records.
// Every method is atomic per record.
type Store interface {
	// Create assigns the id and created_at, forces status pending and inserts the draft.
	Create(ctx context.Context, draft *domain.ServiceRequest) (*domain.ServiceRequest, error)

	// Get returns ErrNotFound when id is unknown.
	Get(ctx context.Context, id int64) (*domain.ServiceRequest, error)

	// List returns matching requests ordered by created_at (id breaks ties).
	List(ctx context.Context, filter Filter) ([]*domain.ServiceRequest, error)

	// UpdateStatus sets the status to `to` only if it currently equals `from`.
	// It returns ErrNotFound for unknown ids and ErrStaleStatus when the
	// stored status differs from `from`.
	UpdateStatus(ctx context.Context, id int64, from, to domain.RequestStatus) (*domain.ServiceRequest, error)
}

// Clock returns the current time. Stores and services take one so tests can pin time.
type Clock func() time.Time
