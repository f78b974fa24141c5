package jobs

import (
	"testing"
	"time"
)

// В 23:30 локального времени западнее UTC день по UTC уже следующий.
// Дата агрегата обязана браться по локальной стене.
func TestLocalDay_WestOfUTCKeepsWallDate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, time.March, 10, 23, 30, 0, 0, loc)

	day := localDay(now, loc)

	if day.Year() != 2026 || day.Month() != time.March || day.Day() != 10 {
		t.Fatalf("дата агрегата %s, ожидалось 10 марта", day.Format("2006-01-02"))
	}
	if day.Hour() != 0 || day.Minute() != 0 {
		t.Fatalf("ожидалась полночь, получили %s", day.Format("15:04"))
	}
	if day.Location() != loc {
		t.Fatalf("дата в зоне %v, ожидалась %v", day.Location(), loc)
	}

	// Для сравнения: усечение по UTC к этому моменту даёт уже 11 марта.
	utcTrunc := now.UTC().Truncate(24 * time.Hour)
	if utcTrunc.Day() == day.Day() {
		t.Fatal("сценарий не воспроизводит сдвиг суток, проверка бессмысленна")
	}
}

func TestLocalDay_EastOfUTCKeepsWallDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2026, time.March, 11, 0, 30, 0, 0, loc)

	day := localDay(now, loc)
	if day.Day() != 11 {
		t.Fatalf("дата агрегата %s, ожидалось 11 марта", day.Format("2006-01-02"))
	}
}
