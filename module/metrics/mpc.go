package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dwallet-labs/dwallet-network-sub004/module"
)

// MPCCollector implements module.MPCMetrics with prometheus.
type MPCCollector struct {
	eventsReceived       *prometheus.CounterVec
	eventsDropped        *prometheus.CounterVec
	sessionsAdmitted     *prometheus.CounterVec
	sessionsCompleted    *prometheus.CounterVec
	queueDepth           *prometheus.GaugeVec
	outputsSubmitted     *prometheus.CounterVec
	maliciousAuthorities prometheus.Counter
	roundDuration        *prometheus.HistogramVec
}

var _ module.MPCMetrics = (*MPCCollector)(nil)

func NewMPCCollector(registerer prometheus.Registerer) *MPCCollector {
	factory := promauto.With(registerer)
	return &MPCCollector{
		eventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "events_received_total",
			Namespace: namespaceDWallet,
			Subsystem: subsystemMPC,
			Help:      "the number of decoded session events, by protocol",
		}, []string{LabelProtocol, LabelPulled}),

		eventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "events_dropped_total",
			Namespace: namespaceDWallet,
			Subsystem: subsystemMPC,
			Help:      "the number of session events dropped before admission, by reason",
		}, []string{LabelReason}),

		sessionsAdmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "sessions_admitted_total",
			Namespace: namespaceDWallet,
			Subsystem: subsystemMPC,
			Help:      "the number of sessions that became ready for computation",
		}, []string{LabelProtocol}),

		sessionsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "sessions_completed_total",
			Namespace: namespaceDWallet,
			Subsystem: subsystemMPC,
			Help:      "the number of sessions with a certified output",
		}, []string{LabelProtocol, LabelRejected}),

		queueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "queue_depth",
			Namespace: namespaceDWallet,
			Subsystem: subsystemMPC,
			Help:      "the number of sessions waiting in the dependency and ready queues",
		}, []string{LabelQueue}),

		outputsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name:      "outputs_submitted_total",
			Namespace: namespaceDWallet,
			Subsystem: subsystemMPC,
			Help:      "the number of authority outputs handed to the quorum verifier, by outcome",
		}, []string{LabelOutcome}),

		maliciousAuthorities: factory.NewCounter(prometheus.CounterOpts{
			Name:      "malicious_authorities_total",
			Namespace: namespaceDWallet,
			Subsystem: subsystemMPC,
			Help:      "the number of votes for losing outputs of certified sessions",
		}),

		roundDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:      "round_duration_seconds",
			Namespace: namespaceDWallet,
			Subsystem: subsystemMPC,
			Help:      "the duration of protocol rounds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{LabelProtocol}),
	}
}

func (c *MPCCollector) EventReceived(kind string, pulled bool) {
	c.eventsReceived.WithLabelValues(kind, strconv.FormatBool(pulled)).Inc()
}

func (c *MPCCollector) EventDropped(reason string) {
	c.eventsDropped.WithLabelValues(reason).Inc()
}

func (c *MPCCollector) SessionAdmitted(kind string) {
	c.sessionsAdmitted.WithLabelValues(kind).Inc()
}

func (c *MPCCollector) SessionCompleted(kind string, rejected bool) {
	c.sessionsCompleted.WithLabelValues(kind, strconv.FormatBool(rejected)).Inc()
}

func (c *MPCCollector) PendingQueues(forKey, forCommittee, ready uint) {
	c.queueDepth.WithLabelValues(QueuePendingForKey).Set(float64(forKey))
	c.queueDepth.WithLabelValues(QueuePendingForCommittee).Set(float64(forCommittee))
	c.queueDepth.WithLabelValues(QueueReady).Set(float64(ready))
}

func (c *MPCCollector) OutputSubmitted(outcome string) {
	c.outputsSubmitted.WithLabelValues(outcome).Inc()
}

func (c *MPCCollector) MaliciousAuthorities(count int) {
	c.maliciousAuthorities.Add(float64(count))
}

func (c *MPCCollector) RoundComputed(kind string, duration time.Duration) {
	c.roundDuration.WithLabelValues(kind).Observe(duration.Seconds())
}
