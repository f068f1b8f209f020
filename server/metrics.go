// SPDX-License-Identifier: GPL-3.0-or-later
package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts SyncML traffic. It is handed to the engine for protocol
// level events.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	commands        *prometheus.CounterVec
	syncs           *prometheus.CounterVec
	expiredSessions prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syncml_http_requests_total",
				Help: "SyncML HTTP requests by status code.",
			},
			[]string{
				"code",
				"flavor", // xml, wbxml, none
			},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "syncml_request_duration_seconds",
				Help:    "Time spent answering SyncML messages in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.100, 0.5, 1, 5, 10, 20},
			},
			[]string{
				"flavor",
			},
		),
		commands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syncml_commands_total",
				Help: "SyncML commands handled.",
			},
			[]string{
				"cmd",
			},
		),
		syncs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "syncml_syncs_completed_total",
				Help: "Completed syncs by database and alert code.",
			},
			[]string{
				"database",
				"type",
			},
		),
		expiredSessions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "syncml_sessions_expired_total",
				Help: "Sessions dropped after being idle too long.",
			},
		),
	}
}

func (m *Metrics) CommandHandled(command string) {
	m.commands.WithLabelValues(command).Inc()
}

func (m *Metrics) SyncCompleted(database string, syncType int) {
	m.syncs.WithLabelValues(database, strconv.Itoa(syncType)).Inc()
}
