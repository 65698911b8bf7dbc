package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements the Collector interface using Prometheus metrics.
type PrometheusCollector struct {
	// Connection metrics
	connectionsTotal  prometheus.Counter
	connectionsActive prometheus.Gauge

	// Authentication metrics
	authAttemptsTotal *prometheus.CounterVec

	// Command metrics
	commandsTotal  *prometheus.CounterVec
	pipelineStages prometheus.Histogram

	// Chat/group metrics
	messagesSentTotal   *prometheus.CounterVec
	groupOperationTotal *prometheus.CounterVec
}

// NewPrometheusCollector creates a new PrometheusCollector with all metrics registered.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatd_connections_total",
			Help: "Total number of chat connections opened.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chatd_connections_active",
			Help: "Number of currently active chat connections.",
		}),

		authAttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatd_auth_attempts_total",
			Help: "Total number of authentication attempts.",
		}, []string{"result"}),

		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatd_commands_total",
			Help: "Total number of commands processed.",
		}, []string{"command"}),
		pipelineStages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chatd_pipeline_stages",
			Help:    "Number of stages in a dispatched pipeline.",
			Buckets: []float64{1, 2, 3, 4, 5, 10},
		}),

		messagesSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatd_messages_sent_total",
			Help: "Total number of messages sent, by kind (tell/yell/gyell/mail).",
		}, []string{"kind"}),
		groupOperationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatd_group_operations_total",
			Help: "Total number of group operations, by kind.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.connectionsTotal,
		c.connectionsActive,
		c.authAttemptsTotal,
		c.commandsTotal,
		c.pipelineStages,
		c.messagesSentTotal,
		c.groupOperationTotal,
	)

	return c
}

// ConnectionOpened increments the connection counter and active gauge.
func (c *PrometheusCollector) ConnectionOpened() {
	c.connectionsTotal.Inc()
	c.connectionsActive.Inc()
}

// ConnectionClosed decrements the active connections gauge.
func (c *PrometheusCollector) ConnectionClosed() {
	c.connectionsActive.Dec()
}

// AuthAttempt increments the authentication attempts counter.
func (c *PrometheusCollector) AuthAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.authAttemptsTotal.WithLabelValues(result).Inc()
}

// CommandProcessed increments the command counter.
func (c *PrometheusCollector) CommandProcessed(command string) {
	c.commandsTotal.WithLabelValues(command).Inc()
}

// MessageSent increments the messages-sent counter for the given kind.
func (c *PrometheusCollector) MessageSent(kind string) {
	c.messagesSentTotal.WithLabelValues(kind).Inc()
}

// GroupOperation increments the group-operations counter for the given op.
func (c *PrometheusCollector) GroupOperation(op string) {
	c.groupOperationTotal.WithLabelValues(op).Inc()
}

// PipelineStages observes the stage count of a dispatched pipeline.
func (c *PrometheusCollector) PipelineStages(count int) {
	c.pipelineStages.Observe(float64(count))
}
