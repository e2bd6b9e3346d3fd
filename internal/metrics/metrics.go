package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"subsea-inspector/internal/domain/entity"
)

const namespace = "subsea_inspector"

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of image analyses, partitioned by overall condition.",
		},
		[]string{"condition"},
	)

	analysisFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_failures_total",
			Help:      "Total number of image analyses that failed.",
		},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_seconds",
			Help:      "Image analysis latency in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	defectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "defects_total",
			Help:      "Total number of detected defects by type and severity.",
		},
		[]string{"type", "severity"},
	)

	proximityQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proximity_queries_total",
			Help:      "Total number of proximity searches by target.",
		},
		[]string{"target"},
	)

	httpRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register подключает коллекторы сервиса к переданному реестру.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisFailuresTotal,
		analysisDurationSeconds,
		defectsTotal,
		proximityQueriesTotal,
		httpRequestSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis учитывает успешный анализ и найденные дефекты.
func ObserveAnalysis(duration time.Duration, result *entity.InspectionResult) {
	analysesTotal.WithLabelValues(string(result.OverallCondition)).Inc()
	for _, d := range result.Defects {
		defectsTotal.WithLabelValues(string(d.Type), string(d.Severity)).Inc()
	}
	analysisDurationSeconds.Observe(max(duration, 0).Seconds())
}

// ObserveAnalysisFailure учитывает неудачный анализ.
func ObserveAnalysisFailure() {
	analysisFailuresTotal.Inc()
}

// ObserveProximityQuery учитывает геопоиск по цели (fields, inspections).
func ObserveProximityQuery(target string) {
	proximityQueriesTotal.WithLabelValues(target).Inc()
}

// ObserveHTTPRequest учитывает обработанный HTTP-запрос.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestSeconds.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
