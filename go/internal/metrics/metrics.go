// Package metrics exposes Prometheus collectors for the clock service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Hit outcomes used as label values.
const (
	OutcomeStarted  = "started"
	OutcomeAdvanced = "advanced"
	OutcomeFinished = "finished"
	OutcomeNoop     = "noop"
)

// StoreStats is what the metrics need from the clock store
type StoreStats interface {
	Len() int
	Clamps() uint64
}

// Metrics holds the service's collectors
type Metrics struct {
	registerer prometheus.Registerer

	clocksCreated   prometheus.Counter
	hitsTotal       *prometheus.CounterVec
	renamesTotal    prometheus.Counter
	requestErrors   *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
	activeViewers   prometheus.Gauge
	snapshotsPushed prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registerer: reg,

		clocksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turnclock_clocks_created_total",
			Help: "Total number of clocks created",
		}),
		hitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turnclock_hits_total",
			Help: "Total number of hits by outcome",
		}, []string{"outcome"}), // started, advanced, finished, noop
		renamesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turnclock_renames_total",
			Help: "Total number of player renames",
		}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turnclock_request_errors_total",
			Help: "Total number of failed clock operations by error kind",
		}, []string{"operation", "kind"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "turnclock_events_published_total",
			Help: "Total number of clock events handed to the publisher by result",
		}, []string{"result"}), // ok, error
		activeViewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "turnclock_active_viewers",
			Help: "Number of connected stream viewers",
		}),
		snapshotsPushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "turnclock_snapshots_pushed_total",
			Help: "Total number of snapshots pushed to stream viewers",
		}),
	}

	reg.MustRegister(
		m.clocksCreated,
		m.hitsTotal,
		m.renamesTotal,
		m.requestErrors,
		m.eventsPublished,
		m.activeViewers,
		m.snapshotsPushed,
	)
	return m
}

// RegisterStore exports gauges read straight from the store
func (m *Metrics) RegisterStore(s StoreStats) {
	m.registerer.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "turnclock_clocks",
			Help: "Number of clocks held in memory",
		}, func() float64 { return float64(s.Len()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "turnclock_time_clamps_total",
			Help: "Number of hits where system time moved backward and elapsed time was clamped",
		}, func() float64 { return float64(s.Clamps()) }),
	)
}

func (m *Metrics) ClockCreated()       { m.clocksCreated.Inc() }
func (m *Metrics) Hit(outcome string)  { m.hitsTotal.WithLabelValues(outcome).Inc() }
func (m *Metrics) Renamed()            { m.renamesTotal.Inc() }
func (m *Metrics) ViewerConnected()    { m.activeViewers.Inc() }
func (m *Metrics) ViewerDisconnected() { m.activeViewers.Dec() }
func (m *Metrics) SnapshotPushed()     { m.snapshotsPushed.Inc() }

func (m *Metrics) RequestError(operation, kind string) {
	m.requestErrors.WithLabelValues(operation, kind).Inc()
}

// EventPublished records the result of handing an event to the publisher
func (m *Metrics) EventPublished(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
