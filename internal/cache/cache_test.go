package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestCache_PutGet(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock)

	c.Put(Student, Key(int64(7)), "иванов")
	v, ok := c.Get(Student, "7")
	if !ok || v != "иванов" {
		t.Fatalf("ожидали попадание со значением 'иванов', получили %v, %v", v, ok)
	}

	if _, ok := c.Get(Student, "8"); ok {
		t.Fatal("неожиданное попадание по чужому ключу")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock)

	c.Put(UngradedSubmissions, "all", []int64{1, 2})
	clock.Advance(14 * time.Minute)
	if _, ok := c.Get(UngradedSubmissions, "all"); !ok {
		t.Fatal("запись не должна была устареть за 14 минут")
	}

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get(UngradedSubmissions, "all"); ok {
		t.Fatal("запись должна была устареть после TTL региона")
	}
}

func TestCache_RegionTTLsDiffer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := New(clock)

	c.Put(OverdueAssignments, "all", 1) // 15 минут
	c.Put(AverageGPA, "all", 3.5)       // 6 часов

	clock.Advance(time.Hour)
	if _, ok := c.Get(OverdueAssignments, "all"); ok {
		t.Fatal("короткоживущий регион должен был устареть")
	}
	if _, ok := c.Get(AverageGPA, "all"); !ok {
		t.Fatal("долгоживущий регион не должен был устареть")
	}
}

func TestCache_ClearRegion(t *testing.T) {
	c := New(clockwork.NewFakeClock())
	c.Put(Students, "all-50-0", 1)
	c.Put(Teachers, "all-50-0", 2)

	c.ClearRegion(Students)
	if _, ok := c.Get(Students, "all-50-0"); ok {
		t.Fatal("регион students должен быть пуст")
	}
	if _, ok := c.Get(Teachers, "all-50-0"); !ok {
		t.Fatal("регион teachers не должен был пострадать")
	}
}

func TestCache_ClearAll(t *testing.T) {
	c := New(clockwork.NewFakeClock())
	c.Put(Students, "a", 1)
	c.Put(Courses, "b", 2)

	c.ClearAll()
	if got := len(c.Regions()); got != 0 {
		t.Fatalf("ожидали пустой кеш, осталось регионов: %d", got)
	}
}

func TestKey_Format(t *testing.T) {
	if got := Key(int64(12), int64(34)); got != "12-34" {
		t.Fatalf("ожидали '12-34', получили %q", got)
	}
	if got := Key("all", 50, 0); got != "all-50-0" {
		t.Fatalf("ожидали 'all-50-0', получили %q", got)
	}
}

func TestTTL_DefaultForUnknownRegion(t *testing.T) {
	if got := TTL(Region("что-то-новое")); got != DefaultTTL {
		t.Fatalf("ожидали TTL по умолчанию, получили %v", got)
	}
}
