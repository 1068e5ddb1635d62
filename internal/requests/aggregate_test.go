package requests

import (
	"context"
	"testing"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderEarningsTracksCompletedOnly(t *testing.T) {
	clock := newStepClock()
	svc := newTestService(t, NewMemoryStore(clock.Now), clock, Policy{}, nil)
	ctx := context.Background()

	earnings := func() float64 {
		v, err := svc.ProviderEarnings(ctx, 3)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, 0.0, earnings())

	complete := func(price float64) {
		in := tomorrowInput
		in.Price = price
		req := mustCreate(t, svc, customer7, in)
		_, err := svc.Act(ctx, req.ID, ActionAccept, provider3)
		require.NoError(t, err)
		_, err = svc.Act(ctx, req.ID, ActionComplete, provider3)
		require.NoError(t, err)
	}

	complete(50000)
	assert.Equal(t, 50000.0, earnings())
	complete(1250.5)
	assert.Equal(t, 51250.5, earnings())

	// pending, in progress and cancelled requests never count
	pending := mustCreate(t, svc, customer7, tomorrowInput)
	_ = pending
	accepted := mustCreate(t, svc, customer8, tomorrowInput)
	_, err := svc.Act(ctx, accepted.ID, ActionAccept, provider3)
	require.NoError(t, err)
	rejected := mustCreate(t, svc, customer8, tomorrowInput)
	_, err = svc.Act(ctx, rejected.ID, ActionReject, provider3)
	require.NoError(t, err)
	assert.Equal(t, 51250.5, earnings())

	// another provider's completed work is not included
	other := tomorrowInput
	other.ProviderID, other.ServiceID, other.Price = 4, 13, 999
	req := mustCreate(t, svc, customer7, other)
	_, err = svc.Act(ctx, req.ID, ActionAccept, provider4)
	require.NoError(t, err)
	_, err = svc.Act(ctx, req.ID, ActionComplete, provider4)
	require.NoError(t, err)
	assert.Equal(t, 51250.5, earnings())
}

func TestStatusCountsAndTopN(t *testing.T) {
	rows := []*domain.ServiceRequest{
		{ID: 5, Status: domain.StatusPending},
		{ID: 4, Status: domain.StatusCompleted},
		{ID: 3, Status: domain.StatusCompleted},
		{ID: 2, Status: domain.StatusCancelled},
	}
	counts := StatusCounts(rows)
	assert.Equal(t, map[domain.RequestStatus]int{
		domain.StatusPending:    1,
		domain.StatusInProgress: 0,
		domain.StatusCompleted:  2,
		domain.StatusCancelled:  1,
	}, counts)
	assert.Len(t, StatusCounts(nil), 4)

	assert.Equal(t, []int64{5, 4}, ids(TopNRecent(rows, 2)))
	assert.Equal(t, []int64{5, 4, 3, 2}, ids(TopNRecent(rows, 10)))
	assert.Empty(t, TopNRecent(rows, 0))
	assert.Empty(t, TopNRecent(rows, -1))
	assert.Empty(t, TopNRecent(nil, 3))

	top := TopNRecent(rows, 1)
	top[0] = nil
	assert.NotNil(t, rows[0], "TopNRecent must not alias the input")
}

func TestDashboards(t *testing.T) {
	clock := newStepClock()
	svc := newTestService(t, NewMemoryStore(clock.Now), clock, Policy{}, nil)
	ctx := context.Background()

	var created []int64
	for i := 0; i < 7; i++ {
		in := tomorrowInput
		in.Price = float64(1000 * (i + 1))
		created = append(created, mustCreate(t, svc, customer7, in).ID)
	}
	// complete the first two, reject the third
	for _, id := range created[:2] {
		_, err := svc.Act(ctx, id, ActionAccept, provider3)
		require.NoError(t, err)
		_, err = svc.Act(ctx, id, ActionComplete, provider3)
		require.NoError(t, err)
	}
	_, err := svc.Act(ctx, created[2], ActionReject, provider3)
	require.NoError(t, err)

	cd, err := svc.Aggregator().CustomerDashboard(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, cd.Total)
	assert.Equal(t, 2, cd.Counts[domain.StatusCompleted])
	assert.Equal(t, 4, cd.Counts[domain.StatusPending])
	assert.Len(t, cd.Recent, DashboardRecent)
	assert.Equal(t, created[6], cd.Recent[0].ID)

	pd, err := svc.Aggregator().ProviderDashboard(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, pd.Total)
	assert.Equal(t, 3000.0, pd.Earnings)
	assert.Equal(t, 1500.0, pd.AveragePrice)
	assert.InDelta(t, 2.0/7.0, pd.CompletionRate, 1e-9)
	assert.Equal(t, 1, pd.Counts[domain.StatusCancelled])

	empty, err := svc.Aggregator().ProviderDashboard(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0.0, empty.Earnings)
	assert.Equal(t, 0.0, empty.CompletionRate)
	assert.Empty(t, empty.Recent)

	mine, err := svc.Aggregator().RequestsForCustomer(ctx, 8)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
