package requests

import (
	"context"
	"sync"
	"testing"

	"github.com/khadamati/khadamati/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBus struct {
	mu     sync.Mutex
	topics []string
	events []Transition
}

func (b *recordingBus) Publish(topic string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = append(b.topics, topic)
	if len(args) == 1 {
		if tr, ok := args[0].(Transition); ok {
			b.events = append(b.events, tr)
		}
	}
}

func TestLifecycleScenario(t *testing.T) {
	clock := newStepClock()
	bus := &recordingBus{}
	svc := newTestService(t, NewMemoryStore(clock.Now), clock, Policy{}, bus)
	ctx := context.Background()

	req := mustCreate(t, svc, customer7, tomorrowInput)
	assert.Equal(t, domain.StatusPending, req.Status)

	// customer cannot accept
	_, err := svc.Transition(ctx, req.ID, domain.StatusInProgress, customer7)
	assert.ErrorIs(t, err, ErrForbidden)
	got, _ := svc.Get(ctx, req.ID)
	assert.Equal(t, domain.StatusPending, got.Status)

	// unrelated provider cannot accept
	_, err = svc.Transition(ctx, req.ID, domain.StatusInProgress, provider4)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err = svc.Transition(ctx, req.ID, domain.StatusInProgress, provider3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)

	got, err = svc.Transition(ctx, req.ID, domain.StatusCompleted, provider3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	earnings, err := svc.ProviderEarnings(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 50000.0, earnings)

	// completed is terminal
	_, err = svc.Transition(ctx, req.ID, domain.StatusCancelled, provider3)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	got, _ = svc.Get(ctx, req.ID)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	assert.Equal(t, []string{TopicCreated, TopicTransitioned, TopicTransitioned}, bus.topics)
	assert.Equal(t, ActionAccept, bus.events[1].Action)
	assert.Equal(t, ActionComplete, bus.events[2].Action)
	assert.Equal(t, domain.StatusInProgress, bus.events[2].From)
}

func TestApplyErrors(t *testing.T) {
	clock := newStepClock()
	svc := newTestService(t, NewMemoryStore(clock.Now), clock, Policy{}, nil)
	ctx := context.Background()
	req := mustCreate(t, svc, customer7, tomorrowInput)

	_, err := svc.Transition(ctx, 404, domain.StatusInProgress, provider3)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Transition(ctx, req.ID, domain.RequestStatus("archived"), provider3)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Transition(ctx, req.ID, domain.StatusPending, provider3)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// pending -> completed skips in_progress
	_, err = svc.Transition(ctx, req.ID, domain.StatusCompleted, provider3)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// unreachable edges are reported before permissions
	_, err = svc.Transition(ctx, req.ID, domain.StatusCompleted, customer7)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.Act(ctx, req.ID, "approve", provider3)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, _ := svc.Get(ctx, req.ID)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	clock := newStepClock()
	policy := Policy{AdminOverride: true, ProviderCancelInProgress: true}
	svc := newTestService(t, NewMemoryStore(clock.Now), clock, policy, nil)
	ctx := context.Background()

	completed := mustCreate(t, svc, customer7, tomorrowInput)
	_, err := svc.Act(ctx, completed.ID, ActionAccept, provider3)
	require.NoError(t, err)
	_, err = svc.Act(ctx, completed.ID, ActionComplete, provider3)
	require.NoError(t, err)

	cancelled := mustCreate(t, svc, customer7, tomorrowInput)
	_, err = svc.Act(ctx, cancelled.ID, ActionReject, provider3)
	require.NoError(t, err)

	for _, r := range []*struct {
		id   int64
		want domain.RequestStatus
	}{{completed.ID, domain.StatusCompleted}, {cancelled.ID, domain.StatusCancelled}} {
		for _, actor := range []Actor{customer7, provider3, provider4, admin1} {
			for _, target := range domain.AllStatuses {
				_, err := svc.Transition(ctx, r.id, target, actor)
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		}
		got, err := svc.Get(ctx, r.id)
		require.NoError(t, err)
		assert.Equal(t, r.want, got.Status)
	}
}

func TestInProgressCancellation(t *testing.T) {
	ctx := context.Background()
	setup := func(p Policy) (*Service, int64) {
		clock := newStepClock()
		svc := newTestService(t, NewMemoryStore(clock.Now), clock, p, nil)
		req := mustCreate(t, svc, customer7, tomorrowInput)
		_, err := svc.Act(ctx, req.ID, ActionAccept, provider3)
		require.NoError(t, err)
		return svc, req.ID
	}

	svc, id := setup(Policy{})
	_, err := svc.Act(ctx, id, ActionCancel, provider3)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.Act(ctx, id, ActionCancel, admin1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	svc, id = setup(Policy{AdminOverride: true})
	_, err = svc.Act(ctx, id, ActionCancel, provider3)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	got, err := svc.Act(ctx, id, ActionCancel, admin1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	svc, id = setup(Policy{ProviderCancelInProgress: true})
	_, err = svc.Act(ctx, id, ActionCancel, customer7)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Act(ctx, id, ActionCancel, provider4)
	assert.ErrorIs(t, err, ErrForbidden)
	got, err = svc.Act(ctx, id, ActionCancel, provider3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
}

func TestAdminViewOnlyWithoutOverride(t *testing.T) {
	clock := newStepClock()
	svc := newTestService(t, NewMemoryStore(clock.Now), clock, Policy{}, nil)
	req := mustCreate(t, svc, customer7, tomorrowInput)
	_, err := svc.Act(context.Background(), req.ID, ActionAccept, admin1)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConcurrentAcceptAndReject(t *testing.T) {
	for name, factory := range storeFactories() {
		factory := factory
		t.Run(name, func(t *testing.T) {
			clock := newStepClock()
			svc := newTestService(t, factory(t, clock.Now), clock, Policy{}, nil)
			ctx := context.Background()

			for round := 0; round < 10; round++ {
				req := mustCreate(t, svc, customer7, tomorrowInput)

				const workers = 8
				var wg sync.WaitGroup
				errs := make([]error, workers)
				start := make(chan struct{})
				for i := 0; i < workers; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						<-start
						action := ActionAccept
						if i%2 == 1 {
							action = ActionReject
						}
						_, errs[i] = svc.Act(ctx, req.ID, action, provider3)
					}(i)
				}
				close(start)
				wg.Wait()

				successes := 0
				for _, err := range errs {
					if err == nil {
						successes++
						continue
					}
					assert.ErrorIs(t, err, ErrInvalidTransition)
				}
				assert.Equal(t, 1, successes)

				got, err := svc.Get(ctx, req.ID)
				require.NoError(t, err)
				assert.Contains(t, []domain.RequestStatus{domain.StatusInProgress, domain.StatusCancelled}, got.Status)
			}
		})
	}
}
