package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ownmap_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"dialect"})

	FilesScannedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ownmap_files_scanned_total",
		Help: "Total number of source files read and extracted.",
	}, []string{"dialect"})

	ReadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ownmap_read_failures_total",
		Help: "Total number of files skipped because they could not be read.",
	})

	DefinitionRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ownmap_definition_records_total",
		Help: "Number of definition records in the fact store after a scan.",
	})

	CacheLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ownmap_cache_loads_total",
		Help: "Cache load attempts by outcome (hit, miss, corrupt, key_mismatch).",
	}, []string{"outcome"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ownmap_scan_seconds",
		Help:    "Wall time for one full scan including extraction.",
		Buckets: prometheus.DefBuckets,
	})
)

// Serve exposes /metrics on addr in a background goroutine. Errors from the
// listener are reported through errFn rather than crashing the scan.
func Serve(addr string, errFn func(error)) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && errFn != nil {
			errFn(err)
		}
	}()
}
