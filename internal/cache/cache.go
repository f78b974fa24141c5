package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Spok95/school-management-api/internal/metrics"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache — потокобезопасный кеш с разбиением на регионы и TTL на регион.
// Просроченные записи отбрасываются лениво при чтении.
type Cache struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	regions map[Region]map[string]entry
}

func New(clock clockwork.Clock) *Cache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		clock:   clock,
		regions: make(map[Region]map[string]entry),
	}
}

// Key склеивает части составного ключа через дефис: "12-34".
func Key(parts ...any) string {
	strs := make([]string, len(parts))
	for i, p := range parts {
		strs[i] = fmt.Sprint(p)
	}
	return strings.Join(strs, "-")
}

// Get возвращает значение и признак попадания. Просроченная запись
// удаляется и считается промахом.
func (c *Cache) Get(region Region, key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.regions[region][key]
	c.mu.RUnlock()

	if ok && c.clock.Now().Before(e.expiresAt) {
		metrics.CacheHits.WithLabelValues(string(region)).Inc()
		return e.value, true
	}
	if ok {
		c.mu.Lock()
		if cur, still := c.regions[region][key]; still && !c.clock.Now().Before(cur.expiresAt) {
			delete(c.regions[region], key)
			metrics.CacheEvictions.WithLabelValues(string(region)).Inc()
		}
		c.mu.Unlock()
	}
	metrics.CacheMisses.WithLabelValues(string(region)).Inc()
	return nil, false
}

// Put кладёт значение с TTL региона.
func (c *Cache) Put(region Region, key string, value any) {
	c.PutTTL(region, key, value, TTL(region))
}

func (c *Cache) PutTTL(region Region, key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.regions[region]
	if !ok {
		m = make(map[string]entry)
		c.regions[region] = m
	}
	m[key] = entry{value: value, expiresAt: c.clock.Now().Add(ttl)}
}

// ClearRegion сбрасывает все записи региона.
func (c *Cache) ClearRegion(region Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.regions[region]; ok {
		metrics.CacheEvictions.WithLabelValues(string(region)).Add(float64(len(m)))
		delete(c.regions, region)
	}
}

// ClearAll сбрасывает кеш целиком.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for region, m := range c.regions {
		metrics.CacheEvictions.WithLabelValues(string(region)).Add(float64(len(m)))
	}
	c.regions = make(map[Region]map[string]entry)
}

// Regions возвращает отсортированные имена непустых регионов.
func (c *Cache) Regions() []Region {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Region, 0, len(c.regions))
	for r, m := range c.regions {
		if len(m) > 0 {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len возвращает число живых записей региона, не трогая просроченные.
func (c *Cache) Len(region Region) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.clock.Now()
	n := 0
	for _, e := range c.regions[region] {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}
