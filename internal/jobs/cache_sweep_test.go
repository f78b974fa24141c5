package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/Spok95/school-management-api/internal/cache"
)

func TestSweepVolatileRegions(t *testing.T) {
	c := cache.New(clockwork.NewFakeClock())
	c.Put(cache.Submissions, "all-50-0", 1)
	c.Put(cache.AttendanceByCourse, "3", 2)
	c.Put(cache.OverdueAssignments, "all", 3)
	c.Put(cache.Students, "all-50-0", 4)
	c.Put(cache.Courses, "all-50-0", 5)

	d := &Deps{Cache: c, Log: zap.NewNop()}
	if err := d.sweepVolatileRegions(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, region := range []cache.Region{cache.Submissions, cache.AttendanceByCourse, cache.OverdueAssignments} {
		if c.Len(region) != 0 {
			t.Errorf("волатильный регион %q должен был сброситься", region)
		}
	}
	for _, region := range []cache.Region{cache.Students, cache.Courses} {
		if c.Len(region) == 0 {
			t.Errorf("стабильный регион %q не должен был сброситься", region)
		}
	}
}

func TestRunner_DailyAtFiresAtConfiguredTime(t *testing.T) {
	start := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, clock, zap.NewNop())
	fired := make(chan struct{}, 1)
	r.DailyAt(23, 30, time.UTC, "test", func(context.Context) error {
		fired <- struct{}{}
		return nil
	})

	clock.BlockUntil(1)
	clock.Advance(13*time.Hour + 30*time.Minute)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("задача не сработала в 23:30")
	}
}

func TestRunner_WeeklyOnWaitsForWeekday(t *testing.T) {
	// 10 января 2026 — суббота; до воскресенья 03:00 ровно 17 часов.
	start := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, clock, zap.NewNop())
	fired := make(chan struct{}, 1)
	r.WeeklyOn(time.Sunday, 3, 0, time.UTC, "test", func(context.Context) error {
		fired <- struct{}{}
		return nil
	})

	clock.BlockUntil(1)
	clock.Advance(16 * time.Hour)
	select {
	case <-fired:
		t.Fatal("задача сработала раньше срока")
	case <-time.After(100 * time.Millisecond):
	}

	clock.Advance(time.Hour)
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("задача не сработала в воскресенье 03:00")
	}
}

func TestRunner_SurvivesJobError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, clock, zap.NewNop())
	fired := make(chan struct{}, 2)
	r.Every(time.Minute, "test", func(context.Context) error {
		fired <- struct{}{}
		return context.DeadlineExceeded
	})

	clock.BlockUntil(1)
	clock.Advance(time.Minute)
	<-fired
	clock.BlockUntil(1)
	clock.Advance(time.Minute)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("ошибка задачи не должна останавливать расписание")
	}
}
