package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 1m", func() {
		a.SchedCancelStalePending()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	// hourly snapshot of the available profit for the dashboard trend chart
	_, err = a.sched.AddFunc("@hourly", func() {
		a.SchedProfitSnapshot()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		retention := cast.ToInt64(a.GetSettingsStringValue("system", "OprLogRetentionDays"))
		if retention <= 0 {
			retention = 365
		}
		a.gormDB.
			Where("opt_time < ? ", time.Now().
				Add(-time.Hour*24*time.Duration(retention))).Delete(domain.SysOprLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SchedProfitSnapshot records the current available profit as a time series
// sample.
func (a *Application) SchedProfitSnapshot() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	stats, err := a.ledger.Snapshot(context.Background())
	if err != nil {
		zap.L().Error("profit snapshot failed", zap.Error(err))
		return
	}
	metrics.Record(metrics.ProfitAvailable, float64(stats.AvailableProfit))
}

// SchedCancelStalePending cancels pending unpaid orders that sat longer than
// the configured window, returning their stock. Cancellation goes through the
// ledger so the restock and the audit log stay consistent with a manual
// cancel.
func (a *Application) SchedCancelStalePending() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	window := a.appConfig.Checkout.StalePendingMinutes
	if window <= 0 {
		return
	}
	cutoff := time.Now().Add(-time.Duration(window) * time.Minute)

	var stale []domain.Order
	err := a.gormDB.
		Where("status = ? AND payment_status = ? AND created_at < ?",
			domain.OrderPending, domain.PaymentPending, cutoff).
		Find(&stale).Error
	if err != nil {
		zap.L().Error("stale order sweep query failed", zap.Error(err))
		return
	}

	ctx := context.Background()
	for _, o := range stale {
		if _, err := a.ledger.TransitionStatus(ctx, o.ID, domain.OrderCancelled); err != nil {
			zap.L().Error("failed to cancel stale order",
				zap.Int64("order_id", o.ID),
				zap.Error(err))
			continue
		}
		zap.L().Info("cancelled stale pending order",
			zap.Int64("order_id", o.ID),
			zap.Time("created_at", o.CreatedAt))
	}
}
