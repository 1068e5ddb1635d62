package app

import (
	"context"
	"testing"
	"time"

	"github.com/khadamati/khadamati/config"
	"github.com/khadamati/khadamati/internal/domain"
	"github.com/khadamati/khadamati/internal/requests"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T, store string) *Application {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.Lifecycle.Store = store

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	a := NewApplication(&cfg)
	a.OverrideDB(db)
	require.NoError(t, a.MigrateDB(false))
	require.NoError(t, a.Setup())
	require.NoError(t, a.SeedDemo(context.Background()))
	t.Cleanup(a.Release)
	return a
}

func counterValue(t *testing.T, a *Application, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := a.Metrics().Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabels(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	got := map[string]string{}
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestLifecycleRecordsHistoryAndMetrics(t *testing.T) {
	for _, store := range []string{StoreDatabase, StoreMemory} {
		t.Run(store, func(t *testing.T) {
			a := newTestApp(t, store)
			ctx := context.Background()
			customer := requests.Actor{ID: 7, Role: requests.RoleCustomer}
			provider := requests.Actor{ID: 3, Role: requests.RoleProvider}

			req, err := a.Requests().Create(ctx, customer, requests.CreateInput{
				ProviderID:    3,
				ServiceID:     12,
				Details:       "kitchen sink leaks",
				ScheduledDate: time.Now().Add(48 * time.Hour).Format(time.RFC3339),
				Price:         50000,
			})
			require.NoError(t, err)

			_, err = a.Requests().Act(ctx, req.ID, requests.ActionAccept, provider)
			require.NoError(t, err)
			_, err = a.Requests().Act(ctx, req.ID, requests.ActionComplete, provider)
			require.NoError(t, err)

			a.WaitEvents()

			events, err := a.History().List(ctx, req.ID)
			require.NoError(t, err)
			require.Len(t, events, 3)
			assert.Equal(t, []string{requests.ActionCreate, requests.ActionAccept, requests.ActionComplete},
				[]string{events[0].Action, events[1].Action, events[2].Action})

			assert.Equal(t, 1.0, counterValue(t, a, "khadamati_requests_created_total", nil))
			assert.Equal(t, 1.0, counterValue(t, a, "khadamati_request_transitions_total",
				map[string]string{"from": "pending", "to": "in_progress"}))
			assert.Equal(t, 1.0, counterValue(t, a, "khadamati_request_transitions_total",
				map[string]string{"from": "in_progress", "to": "completed"}))
		})
	}
}

func TestSetupRejectsUnknownStore(t *testing.T) {
	cfg := *config.DefaultAppConfig
	cfg.Lifecycle.Store = "redis"
	a := NewApplication(&cfg)
	assert.Error(t, a.Setup())
}

func TestPurgeHistory(t *testing.T) {
	a := newTestApp(t, StoreDatabase)
	a.Config().Lifecycle.HistoryDays = 30
	ctx := context.Background()

	old := &domain.RequestEvent{ID: 1, RequestID: 9, Action: requests.ActionCreate, CreatedAt: time.Now().AddDate(0, 0, -31)}
	recent := &domain.RequestEvent{ID: 2, RequestID: 9, Action: requests.ActionAccept, CreatedAt: time.Now().AddDate(0, 0, -1)}
	require.NoError(t, a.DB().Create(old).Error)
	require.NoError(t, a.DB().Create(recent).Error)

	n, err := a.PurgeHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	events, err := a.History().List(ctx, 9)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].ID)
}
