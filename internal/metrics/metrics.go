package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the server and forwarder processes.
type Metrics struct {
	registry *prometheus.Registry

	// evaluation pipeline
	SignalsGenerated *prometheus.CounterVec // labels: pair, direction
	Abstentions      *prometheus.CounterVec // labels: pair
	SettingsUpdates  prometheus.Counter
	StreamClients    prometheus.Gauge

	// forwarder
	ForwarderCycles    *prometheus.CounterVec // labels: outcome
	ForwarderReauth    prometheus.Counter
	SignalsForwarded   prometheus.Counter
	DedupResets        prometheus.Counter
	OverlappingSkipped prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SignalsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_signals_generated_total",
			Help: "Signals recorded by the evaluation scheduler",
		}, []string{"pair", "direction"}),
		Abstentions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_engine_abstentions_total",
			Help: "Evaluations where the indicator engine produced no candidate",
		}, []string{"pair"}),
		SettingsUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaldesk_settings_updates_total",
			Help: "Accepted settings writes",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signaldesk_stream_clients",
			Help: "Connected websocket stream clients",
		}),
		ForwarderCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signaldesk_forwarder_cycles_total",
			Help: "Forwarder poll cycles by outcome",
		}, []string{"outcome"}),
		ForwarderReauth: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaldesk_forwarder_reauth_total",
			Help: "Re-authentications triggered by an authorization failure",
		}),
		SignalsForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaldesk_signals_forwarded_total",
			Help: "Signals pushed to the notification channel",
		}),
		DedupResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaldesk_forwarder_dedup_resets_total",
			Help: "Wholesale resets of the forwarder dedup cache",
		}),
		OverlappingSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signaldesk_forwarder_overlapping_skipped_total",
			Help: "Poll triggers skipped because a cycle was still running",
		}),
	}

	m.registry.MustRegister(
		m.SignalsGenerated,
		m.Abstentions,
		m.SettingsUpdates,
		m.StreamClients,
		m.ForwarderCycles,
		m.ForwarderReauth,
		m.SignalsForwarded,
		m.DedupResets,
		m.OverlappingSkipped,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
