package platform

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	telebot "gopkg.in/telebot.v3"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_requests_total",
			Help: "Total number of messaging platform API calls by method.",
		},
		[]string{"method"},
	)
	apiErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_errors_total",
			Help: "Total number of failed messaging platform API calls by method.",
		},
		[]string{"method"},
	)
	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platform_request_duration_seconds",
			Help:    "Messaging platform API latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

// MetricsClient wraps a Client to collect Prometheus metrics.
type MetricsClient struct {
	next Client
}

// NewMetricsClient creates an instrumented Client.
func NewMetricsClient(next Client) *MetricsClient {
	return &MetricsClient{next: next}
}

func observe(method string, fn func() error) {
	timer := prometheus.NewTimer(apiRequestDuration.WithLabelValues(method))
	err := fn()
	timer.ObserveDuration()
	apiRequestsTotal.WithLabelValues(method).Inc()
	if err != nil {
		apiErrorsTotal.WithLabelValues(method).Inc()
	}
}

// ChatByID instruments Client.ChatByID.
func (m *MetricsClient) ChatByID(ctx context.Context, chatID int64) (chat *Chat, err error) {
	observe("getChat", func() error {
		chat, err = m.next.ChatByID(ctx, chatID)
		return err
	})
	return chat, err
}

// MemberOf instruments Client.MemberOf.
func (m *MetricsClient) MemberOf(ctx context.Context, chatID, userID int64) (member *telebot.ChatMember, err error) {
	observe("getChatMember", func() error {
		member, err = m.next.MemberOf(ctx, chatID, userID)
		return err
	})
	return member, err
}

// CreateTopic instruments Client.CreateTopic.
func (m *MetricsClient) CreateTopic(ctx context.Context, chatID int64, name string) (threadID int, err error) {
	observe("createForumTopic", func() error {
		threadID, err = m.next.CreateTopic(ctx, chatID, name)
		return err
	})
	return threadID, err
}

// Copy instruments Client.Copy.
func (m *MetricsClient) Copy(ctx context.Context, toChatID int64, threadID int, msg telebot.Editable) (out *telebot.Message, err error) {
	observe("copyMessage", func() error {
		out, err = m.next.Copy(ctx, toChatID, threadID, msg)
		return err
	})
	return out, err
}

// Send instruments Client.Send.
func (m *MetricsClient) Send(ctx context.Context, toChatID int64, threadID int, text string) (out *telebot.Message, err error) {
	observe("sendMessage", func() error {
		out, err = m.next.Send(ctx, toChatID, threadID, text)
		return err
	})
	return out, err
}
