package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modulith_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "modulith_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FileUploadBytes records uploaded file sizes.
	FileUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modulith_file_upload_bytes",
		Help:    "Uploaded file sizes in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})

	// FileDownloadsTotal counts file downloads by visibility.
	FileDownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modulith_file_downloads_total",
		Help: "Total number of file downloads",
	}, []string{"visibility"})

	// SeededRecordsTotal counts rows written by the seeders, by module.
	SeededRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modulith_seeded_records_total",
		Help: "Total number of records created by seeders",
	}, []string{"module"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
