package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the persistence layer
type Metrics struct {
	QueryCounter      *prometheus.CounterVec
	QueryDuration     *prometheus.HistogramVec
	MutationCounter   *prometheus.CounterVec
	StreamSubscribers *prometheus.GaugeVec
	StreamEmissions   *prometheus.CounterVec
	SyncCounter       *prometheus.CounterVec
	DBConnPoolStats   *prometheus.GaugeVec
}

// NewMetrics creates a new metrics instance registered on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		QueryCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bugmemo",
				Subsystem: "store",
				Name:      "queries_total",
				Help:      "Total number of read queries",
			},
			[]string{"kind", "status"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bugmemo",
				Subsystem: "store",
				Name:      "query_duration_seconds",
				Help:      "Read query duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		MutationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bugmemo",
				Subsystem: "store",
				Name:      "mutations_total",
				Help:      "Total number of write operations",
			},
			[]string{"table", "op", "status"},
		),
		StreamSubscribers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "bugmemo",
				Subsystem: "store",
				Name:      "stream_subscribers",
				Help:      "Number of active reactive stream subscriptions",
			},
			[]string{"stream"},
		),
		StreamEmissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bugmemo",
				Subsystem: "store",
				Name:      "stream_emissions_total",
				Help:      "Total number of snapshots delivered to stream subscribers",
			},
			[]string{"stream"},
		),
		SyncCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bugmemo",
				Subsystem: "sync",
				Name:      "gist_requests_total",
				Help:      "Total number of gist sync requests",
			},
			[]string{"op", "status"},
		),
		DBConnPoolStats: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "bugmemo",
				Subsystem: "store",
				Name:      "db_connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"stat"},
		),
	}
}

// ObserveQuery records a read query with its duration and outcome
func (m *Metrics) ObserveQuery(kind string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.QueryCounter.WithLabelValues(kind, status).Inc()
	m.QueryDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// ObserveMutation records a write operation outcome
func (m *Metrics) ObserveMutation(table, op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.MutationCounter.WithLabelValues(table, op, status).Inc()
}

// CollectDBStats starts a goroutine that periodically exports pool stats.
// The goroutine exits when stopCh is closed.
func (m *Metrics) CollectDBStats(db *sql.DB, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				stats := db.Stats()
				m.DBConnPoolStats.WithLabelValues("open").Set(float64(stats.OpenConnections))
				m.DBConnPoolStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.DBConnPoolStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.DBConnPoolStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
			}
		}
	}()
}
