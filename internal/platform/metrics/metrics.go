package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voteflow"

// Metrics holds the pipeline collectors. One value satisfies the metrics
// ports of every voting module and of the broadcast hub.
type Metrics struct {
	VotesEnqueued   *prometheus.CounterVec
	ItemsDequeued   prometheus.Counter
	VotesPersisted  *prometheus.CounterVec
	MalformedItems  prometheus.Counter
	KeepAlives      prometheus.Counter
	Connections     *prometheus.CounterVec
	TallyPublishes  prometheus.Counter
	TallyFailures   prometheus.Counter
	TallyRecipients prometheus.Gauge

	LiveClients      prometheus.Gauge
	FramesDropped    *prometheus.CounterVec
	RefreshThrottled prometheus.Counter
}

// New creates and registers all collectors on registry.
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		VotesEnqueued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "intake",
				Name:      "votes_enqueued_total",
				Help:      "Votes pushed onto the vote queue",
			},
			[]string{"choice"},
		),
		ItemsDequeued: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "items_dequeued_total",
				Help:      "Items popped from the vote queue",
			},
		),
		VotesPersisted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "votes_persisted_total",
				Help:      "Votes written to the store by outcome",
			},
			[]string{"outcome"}, // "inserted", "updated"
		),
		MalformedItems: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "malformed_items_total",
				Help:      "Queue items dropped because they could not be decoded",
			},
		),
		KeepAlives: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "keepalives_total",
				Help:      "Keep-alive statements issued while the queue was empty",
			},
		),
		Connections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "consumer",
				Name:      "connections_total",
				Help:      "Connections established by the consumer",
			},
			[]string{"target"}, // "queue", "store"
		),
		TallyPublishes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tally",
				Name:      "publishes_total",
				Help:      "Tallies published on the scores topic",
			},
		),
		TallyFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tally",
				Name:      "failures_total",
				Help:      "Tally cycles that failed to query or publish",
			},
		),
		TallyRecipients: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "tally",
				Name:      "last_recipients",
				Help:      "Subscribers that received the most recent tally",
			},
		),
		LiveClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "broadcast",
				Name:      "clients",
				Help:      "Currently connected live clients",
			},
		),
		FramesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "broadcast",
				Name:      "frames_dropped_total",
				Help:      "Frames dropped because a client buffer was full",
			},
			[]string{"topic"},
		),
		RefreshThrottled: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "refresh_throttled_total",
				Help:      "Refresh requests rejected by the rate limiter",
			},
		),
	}
}

func (m *Metrics) VoteEnqueued(choice string) {
	m.VotesEnqueued.WithLabelValues(choice).Inc()
}

func (m *Metrics) ItemDequeued() {
	m.ItemsDequeued.Inc()
}

func (m *Metrics) VotePersisted(outcome string) {
	m.VotesPersisted.WithLabelValues(outcome).Inc()
}

func (m *Metrics) MalformedItem() {
	m.MalformedItems.Inc()
}

func (m *Metrics) KeepAlive() {
	m.KeepAlives.Inc()
}

func (m *Metrics) Connected(target string) {
	m.Connections.WithLabelValues(target).Inc()
}

func (m *Metrics) TallyPublished(delivered int) {
	m.TallyPublishes.Inc()
	m.TallyRecipients.Set(float64(delivered))
}

func (m *Metrics) TallyFailed() {
	m.TallyFailures.Inc()
}

func (m *Metrics) ClientsConnected(n int) {
	m.LiveClients.Set(float64(n))
}

func (m *Metrics) FrameDropped(topic string) {
	m.FramesDropped.WithLabelValues(topic).Inc()
}
