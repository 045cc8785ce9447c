package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecast service.
type Metrics struct {
	PredictionsTotal   prometheus.Counter
	PredictionErrors   prometheus.Counter
	PredictionDuration prometheus.Histogram

	// Alerting metrics.
	AlertsEvaluated   prometheus.Counter
	AlertsTriggered   prometheus.Counter
	WebhookDeliveries *prometheus.CounterVec // labels: outcome={confirmed,unconfirmed,skipped}
	AlertsPublished   prometheus.Counter
	PublishErrors     prometheus.Counter

	// Model lifecycle.
	ModelLoaded  prometheus.Gauge
	ModelReloads prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PredictionsTotal,
		m.PredictionErrors,
		m.PredictionDuration,
		m.AlertsEvaluated,
		m.AlertsTriggered,
		m.WebhookDeliveries,
		m.AlertsPublished,
		m.PublishErrors,
		m.ModelLoaded,
		m.ModelReloads,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PredictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_forecast",
			Name:      "predictions_total",
			Help:      "Total forecast predictions served.",
		}),
		PredictionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_forecast",
			Name:      "prediction_errors_total",
			Help:      "Total forecast requests that failed.",
		}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wave_forecast",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of a complete sample-assembly and forward pass.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		AlertsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_forecast",
			Name:      "alerts_evaluated_total",
			Help:      "Total threshold evaluations performed.",
		}),
		AlertsTriggered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_forecast",
			Name:      "alerts_triggered_total",
			Help:      "Evaluations where at least one lead hour exceeded the threshold.",
		}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wave_forecast",
			Name:      "webhook_deliveries_total",
			Help:      "Webhook delivery attempts by outcome.",
		}, []string{"outcome"}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_forecast",
			Name:      "alerts_published_total",
			Help:      "Alert events published to the alert topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_forecast",
			Name:      "publish_errors_total",
			Help:      "Failed publishes to the alert topic.",
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wave_forecast",
			Name:      "model_loaded",
			Help:      "1 when a model is loaded and serving, 0 otherwise.",
		}),
		ModelReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wave_forecast",
			Name:      "model_reloads_total",
			Help:      "Successful checkpoint reloads.",
		}),
	}
}
