package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flashrent"

// Collector counts pipeline outcomes on its own registry.
type Collector struct {
	registry *prometheus.Registry

	ordersCreated      *prometheus.CounterVec
	ordersUpdated      *prometheus.CounterVec
	ordersRejected     *prometheus.CounterVec
	delegations        *prometheus.CounterVec
	delegatedEnergy    *prometheus.CounterVec
	delegationDuration *prometheus.HistogramVec
	paymentsReceived   *prometheus.CounterVec
}

// New registers pipeline metrics together with process and Go runtime collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders inserted by the creation path.",
		}, []string{"network"}),
		ordersUpdated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_updated_total",
			Help:      "Orders re-entered by the update path.",
		}, []string{"network"}),
		ordersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Payments rejected before an order was written.",
		}, []string{"network", "reason"}),
		delegations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegations_total",
			Help:      "Energy delegation attempts by outcome.",
		}, []string{"network", "outcome"}),
		delegatedEnergy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delegated_energy_total",
			Help:      "Energy successfully delegated.",
		}, []string{"network"}),
		delegationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delegation_duration_seconds",
			Help:      "Latency of the delegation service call.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"network"}),
		paymentsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_received_total",
			Help:      "Payment notifications accepted by the intake queue.",
		}, []string{"network", "duplicate"}),
	}

	c.registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		c.ordersCreated,
		c.ordersUpdated,
		c.ordersRejected,
		c.delegations,
		c.delegatedEnergy,
		c.delegationDuration,
		c.paymentsReceived,
	)
	return c
}

// Handler exposes the registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) OrderCreated(networkID string) {
	c.ordersCreated.WithLabelValues(networkID).Inc()
}

func (c *Collector) OrderUpdated(networkID string) {
	c.ordersUpdated.WithLabelValues(networkID).Inc()
}

func (c *Collector) OrderRejected(networkID, reason string) {
	c.ordersRejected.WithLabelValues(networkID, reason).Inc()
}

func (c *Collector) DelegationFinished(networkID string, succeeded bool, energy int64, elapsed time.Duration) {
	outcome := "failed"
	if succeeded {
		outcome = "completed"
		c.delegatedEnergy.WithLabelValues(networkID).Add(float64(energy))
	}
	c.delegations.WithLabelValues(networkID, outcome).Inc()
	c.delegationDuration.WithLabelValues(networkID).Observe(elapsed.Seconds())
}

// PaymentReceived counts intake queue submissions.
func (c *Collector) PaymentReceived(networkID string, duplicate bool) {
	label := "false"
	if duplicate {
		label = "true"
	}
	c.paymentsReceived.WithLabelValues(networkID, label).Inc()
}
