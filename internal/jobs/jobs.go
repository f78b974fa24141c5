package jobs

import (
	"database/sql"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/cache"
	"github.com/Spok95/school-management-api/internal/events"
	"github.com/Spok95/school-management-api/internal/notify"
)

// Deps — зависимости фоновых задач. Clock и Loc задают «сейчас»
// для окон сканирования и дат агрегатов.
type Deps struct {
	DB         *sql.DB
	Cache      *cache.Cache
	Events     *events.Publisher
	Notify     *notify.Service
	Log        *zap.Logger
	Clock      clockwork.Clock
	Loc        *time.Location
	AdminEmail string
}

// Register вешает все задачи на планировщик.
func Register(r *Runner, loc *time.Location, d *Deps) {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	d.Loc = loc
	r.Every(time.Hour, "cache_sweep", d.sweepVolatileRegions)
	r.Every(4*time.Hour, "upcoming_assignments", d.scanUpcomingAssignments)
	r.Every(2*time.Hour, "overdue_assignments", d.scanOverdueAssignments)
	r.DailyAt(23, 30, loc, "attendance_stats", d.dailyAttendanceStats)
	r.DailyAt(2, 0, loc, "gpa_recompute", d.recomputeGPA)
	r.WeeklyOn(time.Sunday, 3, 0, loc, "weekly_maintenance", d.weeklyMaintenance)
}
