package catalog

import (
	"context"
	"strings"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/khadamati/khadamati/internal/requests"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ServiceQuery filters ListServices.
type ServiceQuery struct {
	Q          string
	ProviderID int64
	CategoryID int64
	Page       int
	PageSize   int
}

// GormCatalog is the read-only catalog backed by the provider, category and
// service tables.
type GormCatalog struct {
	db *gorm.DB
}

var _ requests.Catalog = (*GormCatalog)(nil)

func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

func (r *GormCatalog) GetProvider(ctx context.Context, id int64) (*domain.Provider, error) {
	var p domain.Provider
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(requests.ErrNotFound, "provider %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load provider %d", id)
	}
	return &p, nil
}

func (r *GormCatalog) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrapf(requests.ErrNotFound, "service %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load service %d", id)
	}
	return &s, nil
}

// ListServices returns one page of services and the total match count.
func (r *GormCatalog) ListServices(ctx context.Context, q ServiceQuery) ([]domain.Service, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 500 {
		q.PageSize = 20
	}

	db := r.db.WithContext(ctx).Model(&domain.Service{})
	if kw := strings.TrimSpace(q.Q); kw != "" {
		if strings.EqualFold(r.db.Name(), "postgres") {
			db = db.Where("title ILIKE ? OR description ILIKE ?", "%"+kw+"%", "%"+kw+"%")
		} else {
			db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", "%"+strings.ToLower(kw)+"%", "%"+strings.ToLower(kw)+"%")
		}
	}
	if q.ProviderID != 0 {
		db = db.Where("provider_id = ?", q.ProviderID)
	}
	if q.CategoryID != 0 {
		db = db.Where("category_id = ?", q.CategoryID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count services")
	}
	var rows []domain.Service
	if err := db.Order("id ASC").Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list services")
	}
	return rows, total, nil
}
