package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err = a.sched.AddFunc("@daily", a.SchedPurgeHistoryTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedPurgeHistoryTask drops expired request events
func (a *Application) SchedPurgeHistoryTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	n, err := a.PurgeHistory(context.Background())
	if err != nil {
		zap.L().Error("request history purge failed", zap.Error(err))
		return
	}
	zap.L().Info("request history purged", zap.Int64("rows", n))
}

func (a *Application) PurgeHistory(ctx context.Context) (int64, error) {
	days := a.appConfig.Lifecycle.HistoryDays
	if days <= 0 {
		days = 365
	}
	return a.history.Purge(ctx, time.Now().Add(-time.Hour*24*time.Duration(days)))
}
