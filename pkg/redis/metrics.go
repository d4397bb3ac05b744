package redis

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
)

var (
	redisRequestsTotal   *prometheus.CounterVec
	redisErrorsTotal     *prometheus.CounterVec
	redisRequestDuration *prometheus.HistogramVec
)

func init() {
	redisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_requests_total",
			Help: "Total number of Redis requests by method.",
		},
		[]string{"method"},
	)
	redisErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Total number of Redis errors by method.",
		},
		[]string{"method"},
	)
	redisRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_request_duration_seconds",
			Help:    "Redis request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	prometheus.MustRegister(redisRequestsTotal, redisErrorsTotal, redisRequestDuration)
}

// MetricsClient wraps Client to collect Prometheus metrics.
type MetricsClient struct {
	next *Client
}

// NewMetricsClient creates an instrumented Redis client.
func NewMetricsClient(next *Client) *MetricsClient {
	return &MetricsClient{next: next}
}

// observe records one request; redis.Nil is an absent key, not a failure.
func observe(method string, fn func() error) {
	timer := prometheus.NewTimer(redisRequestDuration.WithLabelValues(method))
	err := fn()
	timer.ObserveDuration()
	redisRequestsTotal.WithLabelValues(method).Inc()
	if err != nil && err != goredis.Nil {
		redisErrorsTotal.WithLabelValues(method).Inc()
	}
}

// Get instruments Client.Get.
func (m *MetricsClient) Get(ctx context.Context, key string) (result string, err error) {
	observe("get", func() error {
		result, err = m.next.Get(ctx, key)
		return err
	})
	return result, err
}

// Set instruments Client.Set.
func (m *MetricsClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) (err error) {
	observe("set", func() error {
		err = m.next.Set(ctx, key, value, ttl)
		return err
	})
	return err
}

// Delete instruments Client.Delete.
func (m *MetricsClient) Delete(ctx context.Context, key string) (err error) {
	observe("delete", func() error {
		err = m.next.Delete(ctx, key)
		return err
	})
	return err
}

// SetNX instruments Client.SetNX.
func (m *MetricsClient) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (ok bool, err error) {
	observe("setnx", func() error {
		ok, err = m.next.SetNX(ctx, key, value, ttl)
		return err
	})
	return ok, err
}

// CompareAndDelete instruments Client.CompareAndDelete.
func (m *MetricsClient) CompareAndDelete(ctx context.Context, key, value string) (ok bool, err error) {
	observe("compare_and_delete", func() error {
		ok, err = m.next.CompareAndDelete(ctx, key, value)
		return err
	})
	return ok, err
}

// ScanIter counts the scan; per-page round trips are not timed individually.
func (m *MetricsClient) ScanIter(ctx context.Context, pattern string, count int64) *goredis.ScanIterator {
	redisRequestsTotal.WithLabelValues("scan").Inc()
	return m.next.ScanIter(ctx, pattern, count)
}

// TxPipeline counts the pipeline; commands queued on it are not timed individually.
func (m *MetricsClient) TxPipeline() goredis.Pipeliner {
	redisRequestsTotal.WithLabelValues("pipeline").Inc()
	return m.next.TxPipeline()
}

// Ping forwards to the underlying client for health checks.
func (m *MetricsClient) Ping(ctx context.Context) *goredis.StatusCmd {
	return m.next.Ping(ctx)
}

// Close closes underlying client.
func (m *MetricsClient) Close() error {
	return m.next.Close()
}
