// Package metrics exposes authorization decisions to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tillpoint/internal/application/authorization"
)

const namespace = "tillpoint"

// Recorder counts every decision the engine makes. It is safe for
// concurrent use.
type Recorder struct {
	decisions *prometheus.CounterVec
	denials   *prometheus.CounterVec
	gatherer  prometheus.Gatherer
}

// NewRecorder registers its collectors on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r, _ := NewRecorderWith(reg, reg)
	return r
}

// NewRecorderWith registers on the given registerer. gatherer backs
// Handler and may be nil when the caller serves metrics elsewhere.
func NewRecorderWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Recorder, error) {
	r := &Recorder{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "authz",
				Name:      "decisions_total",
				Help:      "Total number of authorization decisions",
			},
			[]string{"capability", "outcome", "override"},
		),
		denials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "authz",
				Name:      "denials_total",
				Help:      "Authorization denials by kind",
			},
			[]string{"kind", "upgrade_required"},
		),
		gatherer: gatherer,
	}
	for _, c := range []prometheus.Collector{r.decisions, r.denials} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// RecordDecision implements authorization.Recorder.
func (r *Recorder) RecordDecision(d authorization.Decision) {
	outcome := "allow"
	if !d.Allowed {
		outcome = "deny"
	}
	override := string(d.Override)
	if override == "" {
		override = "none"
	}
	r.decisions.WithLabelValues(d.Capability.Kind.String(), outcome, override).Inc()

	if !d.Allowed {
		upgrade := "false"
		if d.UpgradeRequired() {
			upgrade = "true"
		}
		r.denials.WithLabelValues(string(d.Kind), upgrade).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
