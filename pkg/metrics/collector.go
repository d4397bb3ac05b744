package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total number of handled updates labeled by handler and status",
		},
		[]string{"handler", "status"},
	)
	updateDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "update_duration_seconds",
			Help:    "Duration of update handlers in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	relayedMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relayed_messages_total",
			Help: "Total number of messages copied between users and the contact chat",
		},
		[]string{"direction"},
	)
	topicsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_topics_created_total",
			Help: "Total number of contact topics created for new users",
		},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by code and severity",
		},
		[]string{"code", "severity"},
	)
	assignedTopics = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contact_topics_assigned",
			Help: "Current number of users with a topic in the contact chat",
		},
	)
	bannedUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contact_banned_users",
			Help: "Current number of banned users",
		},
	)
)

// Relay directions.
const (
	DirectionToAdmin = "to_admin"
	DirectionToUser  = "to_user"
)

// RecordUpdate increments update counters and records duration.
func RecordUpdate(handler, status string, duration time.Duration) {
	if handler == "" {
		handler = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botUpdatesTotal.WithLabelValues(handler, status).Inc()
	updateDurationSeconds.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordRelay counts a copied message.
func RecordRelay(direction string) {
	relayedMessagesTotal.WithLabelValues(direction).Inc()
}

// RecordTopicCreated counts a topic created on first contact.
func RecordTopicCreated() {
	topicsCreatedTotal.Inc()
}

// RecordError increments error counters with metadata.
func RecordError(code, severity string) {
	if code == "" {
		code = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(code, severity).Inc()
}

// ContactStats is the subset of the contact router the collector polls.
type ContactStats interface {
	AssignedTopicsCount(ctx context.Context, botID int64) (int, error)
	BannedUsers(ctx context.Context, botID int64) ([]int64, error)
}

// ContactCollector periodically gathers contact routing gauges.
type ContactCollector struct {
	stats    ContactStats
	botID    int64
	interval time.Duration
	log      *slog.Logger
}

// NewContactCollector builds a collector bound to one bot identity.
func NewContactCollector(stats ContactStats, botID int64, interval time.Duration, log *slog.Logger) *ContactCollector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &ContactCollector{stats: stats, botID: botID, interval: interval, log: log}
}

// Run polls the contact router until ctx is cancelled.
func (c *ContactCollector) Run(ctx context.Context) {
	if c == nil || c.stats == nil {
		return
	}

	for {
		if err := c.collect(ctx); err != nil {
			c.log.Debug("contact metrics collection failed", slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}

func (c *ContactCollector) collect(ctx context.Context) error {
	topics, err := c.stats.AssignedTopicsCount(ctx, c.botID)
	if err != nil {
		return err
	}
	assignedTopics.Set(float64(topics))

	banned, err := c.stats.BannedUsers(ctx, c.botID)
	if err != nil {
		return err
	}
	bannedUsers.Set(float64(len(banned)))

	return nil
}
