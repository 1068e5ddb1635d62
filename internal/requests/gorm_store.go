package requests

import (
	"context"
	"time"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/khadamati/khadamati/pkg/common"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormStore is the database implementation of Store.
// Status updates are conditional UPDATEs, so concurrent writers on one
// record cannot both succeed.
type GormStore struct {
	db      *gorm.DB
	now     Clock
	timeout time.Duration
}

// NewGormStore creates a new GORM-based store. A timeout <= 0 disables the
// per-operation deadline.
func NewGormStore(db *gorm.DB, now Clock, timeout time.Duration) *GormStore {
	if now == nil {
		now = time.Now
	}
	return &GormStore{db: db, now: now, timeout: timeout}
}

func (s *GormStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GormStore) Create(ctx context.Context, draft *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	req := *draft
	req.ID = common.UUIDint64()
	req.Status = domain.StatusPending
	req.CreatedAt = s.now().Truncate(time.Microsecond)
	if err := s.db.WithContext(ctx).Create(&req).Error; err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return &req, nil
}

func (s *GormStore) Get(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.get(ctx, id)
}

func (s *GormStore) get(ctx context.Context, id int64) (*domain.ServiceRequest, error) {
	var req domain.ServiceRequest
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "request %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load request %d", id)
	}
	return &req, nil
}

func (s *GormStore) List(ctx context.Context, filter Filter) ([]*domain.ServiceRequest, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	query := s.db.WithContext(ctx).Model(&domain.ServiceRequest{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ProviderID != 0 {
		query = query.Where("provider_id = ?", filter.ProviderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Order == "asc" {
		query = query.Order("created_at ASC").Order("id ASC")
	} else {
		query = query.Order("created_at DESC").Order("id DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []*domain.ServiceRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list requests")
	}
	return rows, nil
}

func (s *GormStore) UpdateStatus(ctx context.Context, id int64, from, to domain.RequestStatus) (*domain.ServiceRequest, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).
		Model(&domain.ServiceRequest{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return nil, errors.Wrapf(res.Error, "update request %d", id)
	}
	if res.RowsAffected == 0 {
		cur, err := s.get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, errors.Wrapf(ErrStaleStatus, "request %d is %s, expected %s", id, cur.Status, from)
	}
	req, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	// a later writer may already have moved the row on; report what this call stored
	req.Status = to
	return req, nil
}
