package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/observability"
)

type Job func(ctx context.Context) error

// Runner запускает фоновые задачи по расписанию. Ошибки задач
// логируются и глотаются: сбой одной итерации не останавливает цикл.
type Runner struct {
	ctx   context.Context
	clock clockwork.Clock
	log   *zap.Logger
}

func New(ctx context.Context, clock clockwork.Clock, log *zap.Logger) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{ctx: ctx, clock: clock, log: log}
}

func (r *Runner) run(name string, fn Job) {
	defer func() {
		if rec := recover(); rec != nil {
			jobErrors.WithLabelValues(name).Inc()
			observability.CaptureErr(fmt.Errorf("panic in job %s: %v", name, rec))
			r.log.Error("паника в фоновой задаче", zap.String("job", name), zap.Any("panic", rec))
		}
	}()
	start := r.clock.Now()
	if err := fn(r.ctx); err != nil {
		jobErrors.WithLabelValues(name).Inc()
		observability.CaptureErr(err)
		r.log.Error("фоновая задача завершилась с ошибкой", zap.String("job", name), zap.Error(err))
	}
	jobRuns.WithLabelValues(name).Inc()
	jobDuration.WithLabelValues(name).Observe(r.clock.Since(start).Seconds())
}

// Every выполняет задачу с фиксированным интервалом.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	go func() {
		t := r.clock.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.Chan():
				r.run(name, fn)
			}
		}
	}()
}

// DailyAt выполняет задачу раз в сутки в заданное локальное время.
func (r *Runner) DailyAt(hour, minute int, loc *time.Location, name string, fn Job) {
	go func() {
		for {
			now := r.clock.Now().In(loc)
			next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
			if !now.Before(next) {
				next = next.Add(24 * time.Hour)
			}
			select {
			case <-r.ctx.Done():
				return
			case <-r.clock.After(next.Sub(now)):
				r.run(name, fn)
			}
		}
	}()
}

// WeeklyOn выполняет задачу раз в неделю в заданный день и время.
func (r *Runner) WeeklyOn(day time.Weekday, hour, minute int, loc *time.Location, name string, fn Job) {
	go func() {
		for {
			now := r.clock.Now().In(loc)
			next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
			for next.Weekday() != day || !now.Before(next) {
				next = next.Add(24 * time.Hour)
			}
			select {
			case <-r.ctx.Done():
				return
			case <-r.clock.After(next.Sub(now)):
				r.run(name, fn)
			}
		}
	}()
}
