// Package telemetry wires up the structured logging and metrics surface
// shared by cmd/host and cmd/enclave: a logrus logger and a prometheus
// registry exported over HTTP.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewLogger returns a logrus logger configured the way the rest of this
// pack does: text formatter, full timestamps, level Info unless the
// caller changes it.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	return log
}

// Registry bundles the standard counters and gauges, registered against a
// private prometheus.Registry so a process embedding this package never
// collides with the default global registry. The host forwarder updates
// RxPackets, TxPackets, RingHead and RingTail; nothing in this module
// updates DroppedPkts.
type Registry struct {
	reg *prometheus.Registry

	RxPackets   *prometheus.CounterVec
	TxPackets   *prometheus.CounterVec
	RingHead    *prometheus.GaugeVec
	RingTail    *prometheus.GaugeVec
	DroppedPkts *prometheus.CounterVec
}

// NewRegistry builds and registers the standard metric set.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		RxPackets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sb_forwarder_rx_packets_total",
			Help: "Packets received from a NIC queue or recvq ring.",
		}, []string{"queue"}),
		TxPackets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sb_forwarder_tx_packets_total",
			Help: "Packets transmitted to a NIC queue or sendq ring.",
		}, []string{"queue"}),
		RingHead: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sb_ring_head",
			Help: "Current head counter of a ring.",
		}, []string{"ring"}),
		RingTail: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sb_ring_tail",
			Help: "Current tail counter of a ring.",
		}, []string{"ring"}),
		DroppedPkts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sb_dropped_packets_total",
			Help: "Packets dropped or aborted by an operator pipeline.",
		}, []string{"queue", "reason"}),
	}
	reg.MustRegister(r.RxPackets, r.TxPackets, r.RingHead, r.RingTail, r.DroppedPkts)
	return r
}

// Handler returns the http.Handler that serves this registry's metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
