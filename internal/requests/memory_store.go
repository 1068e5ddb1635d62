package requests

import (
	"context"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/khadamati/khadamati/internal/domain"
	"github.com/khadamati/khadamati/pkg/common"
	"github.com/pkg/errors"
)

type recencyKey struct {
	createdAt time.Time
	id        int64
}

// most recent first
func recencyLess(a, b recencyKey) bool {
	if !a.createdAt.Equal(b.createdAt) {
		return a.createdAt.After(b.createdAt)
	}
	return a.id > b.id
}

// MemoryStore keeps requests in process memory. Records live in a map keyed
// by id; a btree keeps them in recency order for List.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]domain.ServiceRequest
	order   *btree.BTreeG[recencyKey]
	now     Clock
}

func NewMemoryStore(now Clock) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		records: make(map[int64]domain.ServiceRequest),
		order:   btree.NewG[recencyKey](16, recencyLess),
		now:     now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, draft *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := *draft
	req.ID = common.UUIDint64()
	req.Status = domain.StatusPending
	req.CreatedAt = s.now().Truncate(time.Microsecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.records[req.ID]; dup {
		return nil, errors.Errorf("duplicate request id %d", req.ID)
	}
	s.records[req.ID] = req
	s.order.ReplaceOrInsert(recencyKey{createdAt: req.CreatedAt, id: req.ID})
	return &req, nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.records[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "request %d", id)
	}
	return &req, nil
}

func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]*domain.ServiceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*domain.ServiceRequest, 0)
	visit := func(k recencyKey) bool {
		req := s.records[k.id]
		if !matches(&req, filter) {
			return true
		}
		rows = append(rows, &req)
		return filter.Limit <= 0 || len(rows) < filter.Limit
	}
	if filter.Order == "asc" {
		s.order.Descend(visit)
	} else {
		s.order.Ascend(visit)
	}
	return rows, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id int64, from, to domain.RequestStatus) (*domain.ServiceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.records[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "request %d", id)
	}
	if req.Status != from {
		return nil, errors.Wrapf(ErrStaleStatus, "request %d is %s, expected %s", id, req.Status, from)
	}
	req.Status = to
	s.records[id] = req
	return &req, nil
}

func matches(req *domain.ServiceRequest, f Filter) bool {
	if f.CustomerID != 0 && req.CustomerID != f.CustomerID {
		return false
	}
	if f.ProviderID != 0 && req.ProviderID != f.ProviderID {
		return false
	}
	if f.Status != "" && req.Status != f.Status {
		return false
	}
	return true
}
