package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// descriptionsTotal counts analyzed descriptions by outcome.
	// Labels: outcome (ok, translation, parser)
	descriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phascan",
		Subsystem: "pipeline",
		Name:      "descriptions_total",
		Help:      "Total analyzed descriptions by outcome",
	}, []string{"outcome"})

	// descriptionSeconds measures translation, parse and extraction of one
	// description.
	descriptionSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "phascan",
		Subsystem: "pipeline",
		Name:      "description_seconds",
		Help:      "Latency of the analysis of one description",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"outcome"})

	phrasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phascan",
		Subsystem: "pipeline",
		Name:      "phrases_total",
		Help:      "Total extracted action phrases",
	})

	// appsTotal counts analyzed applications by resulting category.
	// Labels: category (table categories, uncategorized, no evidence)
	appsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phascan",
		Subsystem: "pipeline",
		Name:      "apps_total",
		Help:      "Total analyzed applications by category",
	}, []string{"category"})

	// appErrorsTotal counts applications that could not be loaded.
	appErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phascan",
		Subsystem: "pipeline",
		Name:      "app_errors_total",
		Help:      "Total applications that could not be loaded",
	})
)

// RecordDescription records one analyzed description.
func RecordDescription(outcome string, phrases int, durationSec float64) {
	descriptionsTotal.WithLabelValues(outcome).Inc()
	descriptionSeconds.WithLabelValues(outcome).Observe(durationSec)
	if phrases > 0 {
		phrasesTotal.Add(float64(phrases))
	}
}

// RecordApp records the category of an analyzed application.
func RecordApp(category string) {
	appsTotal.WithLabelValues(category).Inc()
}

// RecordAppError records an application that could not be loaded.
func RecordAppError() {
	appErrorsTotal.Inc()
}
