package app

import (
	"context"

	"github.com/khadamati/khadamati/internal/requests"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (a *Application) subscribe() error {
	for _, topic := range []string{requests.TopicCreated, requests.TopicTransitioned} {
		if err := a.bus.Subscribe(topic, a.countTransition); err != nil {
			return errors.Wrapf(err, "subscribe metrics to %s", topic)
		}
		if err := a.bus.SubscribeAsync(topic, a.recordTransition, false); err != nil {
			return errors.Wrapf(err, "subscribe history to %s", topic)
		}
	}
	return nil
}

func (a *Application) countTransition(t requests.Transition) {
	if t.From == "" {
		a.metrics.IncCreated()
		return
	}
	a.metrics.IncTransition(t.From.String(), t.To.String())
}

func (a *Application) recordTransition(t requests.Transition) {
	ctx, cancel := context.WithTimeout(context.Background(), a.appConfig.Lifecycle.OpTimeout)
	defer cancel()
	if err := a.history.Record(ctx, t); err != nil {
		zap.L().Error("failed to record request event",
			zap.String("namespace", "lifecycle"),
			zap.Error(err),
		)
	}
}
