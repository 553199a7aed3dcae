// Package metrics exports a peer session's traffic and round trip
// statistics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

// Source is the read side of a peer. Implemented by *peer.Peer.
type Source interface {
	State() peer.ConnectionState
	TrafficStats() peer.TrafficStats
	RoundTripTime() time.Duration
	RoundTripTimeVariance() time.Duration
	LowestRoundTripTime() time.Duration
	QueuedOutgoingCommands() int
	QueuedIncomingCommands() int
}

var _ Source = (*peer.Peer)(nil)

// Config configures the collector.
type Config struct {
	// Namespace is the metrics namespace (default: "ndg").
	Namespace string

	// Subsystem is the metrics subsystem (default: "peer").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels
}

// Option configures the collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

type counterDesc struct {
	desc  *prometheus.Desc
	value func(peer.TrafficStats) int64
}

// Collector reads a Source on every scrape. Status callbacks and reconnects
// are counted as they are reported.
type Collector struct {
	src Source

	counters []counterDesc

	state       *prometheus.Desc
	rtt         *prometheus.Desc
	rttVariance *prometheus.Desc
	rttLowest   *prometheus.Desc
	queued      *prometheus.Desc
	lastReceive *prometheus.Desc
	dispatchGap *prometheus.Desc

	statuses   *prometheus.CounterVec
	reconnects prometheus.Counter
}

// NewCollector creates a collector for src.
func NewCollector(src Source, opts ...Option) *Collector {
	cfg := Config{Namespace: "ndg", Subsystem: "peer"}
	for _, opt := range opts {
		opt(&cfg)
	}

	name := func(n string) string {
		return prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, n)
	}
	desc := func(n, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(name(n), help, labels, cfg.ConstLabels)
	}
	counter := func(n, help string, value func(peer.TrafficStats) int64) counterDesc {
		return counterDesc{desc: desc(n, help), value: value}
	}

	c := &Collector{
		src: src,
		counters: []counterDesc{
			counter("sent_bytes_total", "Bytes handed to the transport.", func(s peer.TrafficStats) int64 { return s.BytesOut }),
			counter("received_bytes_total", "Bytes received from the transport.", func(s peer.TrafficStats) int64 { return s.BytesIn }),
			counter("sent_frames_total", "Frames handed to the transport.", func(s peer.TrafficStats) int64 { return s.FramesOut }),
			counter("received_frames_total", "Frames received from the transport.", func(s peer.TrafficStats) int64 { return s.FramesIn }),
			counter("operations_total", "Operations sent.", func(s peer.TrafficStats) int64 { return s.OperationsOut }),
			counter("messages_sent_total", "Messages and raw messages sent.", func(s peer.TrafficStats) int64 { return s.MessagesOut }),
			counter("responses_total", "Operation responses dispatched.", func(s peer.TrafficStats) int64 { return s.ResponsesIn }),
			counter("events_total", "Events dispatched.", func(s peer.TrafficStats) int64 { return s.EventsIn }),
			counter("messages_received_total", "Messages and raw messages dispatched.", func(s peer.TrafficStats) int64 { return s.MessagesIn }),
			counter("pings_total", "Pings sent.", func(s peer.TrafficStats) int64 { return s.PingsOut }),
			counter("pongs_total", "Ping replies received.", func(s peer.TrafficStats) int64 { return s.PongsIn }),
			counter("decode_errors_total", "Inbound frames dropped as malformed.", func(s peer.TrafficStats) int64 { return s.DecodeErrors }),
			counter("send_errors_total", "Enqueue and send failures.", func(s peer.TrafficStats) int64 { return s.SendErrors }),
		},
		state:       desc("state", "Connection state (0 disconnected, 1 connecting, 2 connected, 3 disconnecting, 4 zombie)."),
		rtt:         desc("round_trip_seconds", "Smoothed round trip time."),
		rttVariance: desc("round_trip_variance_seconds", "Round trip time variance."),
		rttLowest:   desc("round_trip_lowest_seconds", "Lowest round trip time this session."),
		queued:      desc("queued_commands", "Queued frames by direction.", "direction"),
		lastReceive: desc("last_receive_timestamp_seconds", "Unix time of the last received data."),
		dispatchGap: desc("longest_dispatch_gap_seconds", "Longest time between two dispatch calls."),

		statuses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "status_callbacks_total",
			Help:        "Status callbacks delivered to the listener.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"status"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "reconnects_total",
			Help:        "Reconnect attempts started by the host.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
	return c
}

// ObserveStatus counts a status callback.
func (c *Collector) ObserveStatus(code peer.StatusCode) {
	c.statuses.WithLabelValues(code.String()).Inc()
}

// ObserveReconnect counts a reconnect attempt.
func (c *Collector) ObserveReconnect() {
	c.reconnects.Inc()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, cd := range c.counters {
		ch <- cd.desc
	}
	ch <- c.state
	ch <- c.rtt
	ch <- c.rttVariance
	ch <- c.rttLowest
	ch <- c.queued
	ch <- c.lastReceive
	ch <- c.dispatchGap
	c.statuses.Describe(ch)
	c.reconnects.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.TrafficStats()
	for _, cd := range c.counters {
		ch <- prometheus.MustNewConstMetric(cd.desc, prometheus.CounterValue, float64(cd.value(stats)))
	}

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}
	gauge(c.state, float64(c.src.State()))
	gauge(c.rtt, c.src.RoundTripTime().Seconds())
	gauge(c.rttVariance, c.src.RoundTripTimeVariance().Seconds())
	gauge(c.rttLowest, c.src.LowestRoundTripTime().Seconds())
	gauge(c.queued, float64(c.src.QueuedOutgoingCommands()), "out")
	gauge(c.queued, float64(c.src.QueuedIncomingCommands()), "in")
	if !stats.LastReceive.IsZero() {
		gauge(c.lastReceive, float64(stats.LastReceive.UnixNano())/1e9)
	}
	gauge(c.dispatchGap, stats.LongestDispatchGap.Seconds())

	c.statuses.Collect(ch)
	c.reconnects.Collect(ch)
}

var _ prometheus.Collector = (*Collector)(nil)
