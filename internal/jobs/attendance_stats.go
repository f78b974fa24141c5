package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/db"
	"github.com/Spok95/school-management-api/internal/events"
)

// localDay — полночь календарного дня now в зоне loc. Задача стартует
// в 23:30 локального времени, поэтому день берётся по локальной стене,
// а не по UTC: в западных зонах UTC-день к этому моменту уже следующий.
func localDay(now time.Time, loc *time.Location) time.Time {
	y, m, day := now.In(loc).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// dailyAttendanceStats агрегирует посещаемость за текущий день,
// публикует событие и шлёт сводку администратору.
func (d *Deps) dailyAttendanceStats(ctx context.Context) error {
	today := localDay(d.Clock.Now(), d.Loc)
	stats, err := db.GetDailyAttendanceStats(ctx, d.DB, today)
	if err != nil {
		return err
	}
	d.Events.Publish(events.TopicAttendanceEvents, "ATTENDANCE_STATS", stats)
	d.Notify.DailyAttendanceStats(d.AdminEmail, *stats)
	d.Log.Info("посчитана посещаемость за день",
		zap.Time("date", today),
		zap.Int64("records", stats.TotalRecords),
		zap.Float64("rate", stats.Rate))
	return nil
}
