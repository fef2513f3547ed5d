package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain/history"
)

type Collector struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	StockDiscountsTotal *prometheus.CounterVec
	ContainersTotal     *prometheus.CounterVec
	ShortagesTotal      prometheus.Counter
	RestocksTotal       prometheus.Counter
	SalesTotal          *prometheus.CounterVec
	AppointmentsTotal   *prometheus.CounterVec

	HistoryEventsTotal *prometheus.CounterVec
	AccessDropped      prometheus.Counter
}

// NewCollector registers every metric on a private registry under namespace.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Collector{
		registry: reg,

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		StockDiscountsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "discounts_total",
			Help:      "Stock discounts applied, by origin type.",
		}, []string{"origin"}),

		ContainersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "containers_total",
			Help:      "Containers moved, by movement type.",
		}, []string{"type"}),

		ShortagesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "shortages_total",
			Help:      "Discounts rejected because at least one supply was short.",
		}),

		RestocksTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "restocks_total",
			Help:      "Restock operations recorded.",
		}),

		SalesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "sales_total",
			Help:      "Sales by final status and payment method.",
		}, []string{"status", "method"}),

		AppointmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "appointments_total",
			Help:      "Appointments by status reached.",
		}, []string{"status"}),

		HistoryEventsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "events_total",
			Help:      "History events written, by entity, kind and criticity.",
		}, []string{"entity", "kind", "criticity"}),

		AccessDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "access_dropped_total",
			Help:      "Login records dropped due to a full buffer. Alert if non-zero.",
		}),
	}
}

// ObserveEvent counts a persisted history event.
func (c *Collector) ObserveEvent(e *history.Event) {
	c.HistoryEventsTotal.WithLabelValues(string(e.EntityType), string(e.Kind), string(e.Criticity)).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
