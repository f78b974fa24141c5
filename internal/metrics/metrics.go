package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolapi", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "schoolapi", Name: "http_request_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolapi", Name: "handler_errors_total", Help: "Handler errors",
	})
	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolapi", Name: "cache_hits_total", Help: "Cache hits per region",
	}, []string{"region"})
	CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolapi", Name: "cache_misses_total", Help: "Cache misses per region",
	}, []string{"region"})
	CacheEvictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolapi", Name: "cache_evictions_total", Help: "Evicted cache entries per region",
	}, []string{"region"})
	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schoolapi", Name: "events_published_total", Help: "Published domain events per topic",
	}, []string{"topic"})
	EventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "schoolapi", Name: "events_dropped_total", Help: "Events dropped on full queue",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "schoolapi", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests, HTTPDuration, HandlerErrors,
		CacheHits, CacheMisses, CacheEvictions,
		EventsPublished, EventsDropped, DBPing,
	)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
