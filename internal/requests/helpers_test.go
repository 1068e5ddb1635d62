package requests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var baseTime = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

// stepClock advances one second on every reading.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: baseTime}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fakeCatalog struct {
	providers map[int64]*domain.Provider
	services  map[int64]*domain.Service
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		providers: map[int64]*domain.Provider{
			3: {ID: 3, UserID: 3, Name: "Sami Plumbing"},
			4: {ID: 4, UserID: 4, Name: "Rami Electric"},
		},
		services: map[int64]*domain.Service{
			12: {ID: 12, ProviderID: 3, Title: "Sink repair", Price: 50000},
			13: {ID: 13, ProviderID: 4, Title: "Rewiring", Price: 120000},
		},
	}
}

func (c *fakeCatalog) GetProvider(_ context.Context, id int64) (*domain.Provider, error) {
	p, ok := c.providers[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "provider %d", id)
	}
	return p, nil
}

func (c *fakeCatalog) GetService(_ context.Context, id int64) (*domain.Service, error) {
	s, ok := c.services[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "service %d", id)
	}
	return s, nil
}

var (
	customer7     = Actor{ID: 7, Role: RoleCustomer}
	customer8     = Actor{ID: 8, Role: RoleCustomer}
	provider3     = Actor{ID: 3, Role: RoleProvider}
	provider4     = Actor{ID: 4, Role: RoleProvider}
	admin1        = Actor{ID: 1, Role: RoleAdmin}
	tomorrowInput = CreateInput{
		ProviderID:    3,
		ServiceID:     12,
		Details:       "Fix sink",
		ScheduledDate: baseTime.Add(24 * time.Hour).Format(time.RFC3339),
		Price:         50000,
	}
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

// storeFactories lets contract tests run against every Store implementation.
func storeFactories() map[string]func(t *testing.T, now Clock) Store {
	return map[string]func(t *testing.T, now Clock) Store{
		"memory": func(t *testing.T, now Clock) Store {
			return NewMemoryStore(now)
		},
		"gorm": func(t *testing.T, now Clock) Store {
			return NewGormStore(newTestDB(t), now, 5*time.Second)
		},
	}
}

func newTestService(t *testing.T, store Store, clock *stepClock, policy Policy, bus Publisher) *Service {
	t.Helper()
	return NewService(store, newFakeCatalog(), Options{
		Policy:   policy,
		Bus:      bus,
		Clock:    clock.Now,
		Location: time.UTC,
	})
}

func mustCreate(t *testing.T, svc *Service, actor Actor, in CreateInput) *domain.ServiceRequest {
	t.Helper()
	req, err := svc.Create(context.Background(), actor, in)
	require.NoError(t, err)
	return req
}
