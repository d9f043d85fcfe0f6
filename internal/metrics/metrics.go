package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reodash_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reodash_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reodash_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Transcode pipeline metrics
var (
	TranscodeJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reodash_transcode_jobs_total",
			Help: "Total number of HLS transcode jobs by final state",
		},
		[]string{"state"},
	)

	TranscodeJobsRefused = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reodash_transcode_jobs_refused_total",
			Help: "Total number of transcode admissions refused at capacity",
		},
	)

	TranscodeJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reodash_transcode_jobs_in_progress",
			Help: "Number of transcode jobs currently holding a gate slot",
		},
	)

	TranscodeJobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reodash_transcode_job_duration_seconds",
			Help:    "Transcode job duration from launch to cleanup in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	TranscodeFirstSegmentWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reodash_transcode_first_segment_wait_seconds",
			Help:    "Time spent waiting for the init fragment and first segment",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
	)

	GateSlotsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reodash_gate_slots_in_use",
			Help: "Concurrency gate slots currently held",
		},
	)

	GateSlotsMax = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reodash_gate_slots_max",
			Help: "Concurrency gate capacity",
		},
	)
)

// Segment serving metrics
var (
	SegmentWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reodash_segment_wait_duration_seconds",
			Help:    "Time spent blocking for a requested segment to appear",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30, 60},
		},
	)

	SegmentWaitTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reodash_segment_wait_timeouts_total",
			Help: "Segment requests that exhausted the existence wait bound",
		},
	)
)

// Indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reodash_indexer_runs_total",
			Help: "Total number of recording index runs",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reodash_indexer_last_run_duration_seconds",
			Help: "Duration of the last index run in seconds",
		},
	)

	IndexerRecordings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reodash_indexer_recordings",
			Help: "Number of recordings in the index after the last run",
		},
	)

	IndexerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reodash_indexer_errors_total",
			Help: "Total number of index run errors",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reodash_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"type", "status"},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reodash_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)
)

// Application info metric
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "reodash_app_info",
		Help: "Application information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
