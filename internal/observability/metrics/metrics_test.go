package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveLeadIngested("created")
	m.ObserveLeadIngested("created")
	m.ObserveLeadIngested("rejected")
	m.ObserveTokenValidation(true)
	m.ObserveTokenValidation(false)
	m.ObserveSyncPass("success")
	m.ObserveSyncClinic("created")
	m.ObserveSyncClinic("updated")
	m.ObserveWebhookLatency(0.05)

	if got := testutil.ToFloat64(m.leadsIngested.WithLabelValues("created")); got != 2 {
		t.Errorf("leads ingested created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.tokenValidations.WithLabelValues("invalid")); got != 1 {
		t.Errorf("token validations invalid = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.syncClinics.WithLabelValues("updated")); got != 1 {
		t.Errorf("sync clinics updated = %v, want 1", got)
	}
}

func TestMetrics_NilReceiverSafe(t *testing.T) {
	var m *Metrics
	m.ObserveLeadIngested("created")
	m.ObserveTokenValidation(true)
	m.ObserveSyncPass("failed")
	m.ObserveSyncClinic("skipped")
	m.ObserveWebhookLatency(1)
}
