package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spotmerge.hitchmap.org/internal/models"
)

// Metrics exposes the merge core's operational counters.
type Metrics struct {
	registry *prometheus.Registry

	ProposalActions   *prometheus.CounterVec
	MergesExecuted    prometheus.Counter
	ScansTotal        prometheus.Counter
	ScanDuration      prometheus.Histogram
	ProposalsByStatus *prometheus.GaugeVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ProposalActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spotmerge_proposal_actions_total",
			Help: "Workflow actions by type (propose, vote, approve, reject, cancel).",
		}, []string{"action"}),
		MergesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spotmerge_merges_executed_total",
			Help: "Merges executed to completion.",
		}),
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spotmerge_scans_total",
			Help: "Full duplicate sweeps run.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "spotmerge_scan_duration_seconds",
			Help:    "Duration of full duplicate sweeps.",
			Buckets: prometheus.DefBuckets,
		}),
		ProposalsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "spotmerge_proposals",
			Help: "Current proposal counts by status.",
		}, []string{"status"}),
	}

	registry.MustRegister(
		m.ProposalActions,
		m.MergesExecuted,
		m.ScansTotal,
		m.ScanDuration,
		m.ProposalsByStatus,
	)
	return m
}

// SetProposalStats refreshes the per-status gauges from a stats snapshot.
func (m *Metrics) SetProposalStats(stats models.ProposalStats) {
	m.ProposalsByStatus.WithLabelValues(string(models.StatusPending)).Set(float64(stats.Pending))
	m.ProposalsByStatus.WithLabelValues(string(models.StatusApproved)).Set(float64(stats.Approved))
	m.ProposalsByStatus.WithLabelValues(string(models.StatusExecuted)).Set(float64(stats.Executed))
	m.ProposalsByStatus.WithLabelValues(string(models.StatusRejected)).Set(float64(stats.Rejected))
	m.ProposalsByStatus.WithLabelValues(string(models.StatusCancelled)).Set(float64(stats.Cancelled))
}

// Handler returns the /metrics endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
