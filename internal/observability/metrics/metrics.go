package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for lead ingestion, token validation,
// and clinic sync flows.
type Metrics struct {
	leadsIngested    *prometheus.CounterVec
	tokenValidations *prometheus.CounterVec
	syncPasses       *prometheus.CounterVec
	syncClinics      *prometheus.CounterVec
	webhookLatency   prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		leadsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rafaleads",
			Subsystem: "leads",
			Name:      "ingested_total",
			Help:      "Total inbound lead webhook attempts",
		}, []string{"status"}),
		tokenValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rafaleads",
			Subsystem: "tokens",
			Name:      "validations_total",
			Help:      "Total dashboard token validations",
		}, []string{"outcome"}),
		syncPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rafaleads",
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Total clinic sync passes",
		}, []string{"status"}),
		syncClinics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rafaleads",
			Subsystem: "sync",
			Name:      "clinics_total",
			Help:      "Per-clinic results of sync passes",
		}, []string{"result"}),
		webhookLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rafaleads",
			Subsystem: "leads",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of lead webhook processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadsIngested, m.tokenValidations, m.syncPasses, m.syncClinics, m.webhookLatency)
	return m
}

func (m *Metrics) ObserveLeadIngested(status string) {
	if m == nil {
		return
	}
	m.leadsIngested.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveTokenValidation(valid bool) {
	if m == nil {
		return
	}
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	m.tokenValidations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSyncPass(status string) {
	if m == nil {
		return
	}
	m.syncPasses.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveSyncClinic(result string) {
	if m == nil {
		return
	}
	m.syncClinics.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveWebhookLatency(seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.Observe(seconds)
}
