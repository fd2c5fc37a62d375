package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_http_requests_total",
			Help: "Total number of HTTP requests processed by the messaging service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messaging_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messaging_messages_sent_total",
			Help: "Total number of messages sent, by kind.",
		},
		[]string{"kind"},
	)
	conversationsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_conversations_created_total",
			Help: "Total number of conversations created.",
		},
	)
	messagesMarkedReadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_messages_marked_read_total",
			Help: "Total number of mark-as-read operations.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messaging_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesSentTotal,
		conversationsCreatedTotal,
		messagesMarkedReadTotal,
		amqpPublishErrorsTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// IncMessageSent counts a sent message. Kind is one of direct,
// progress_update or lesson_reminder.
func IncMessageSent(kind string) {
	messagesSentTotal.WithLabelValues(kind).Inc()
}

func IncConversationCreated() {
	conversationsCreatedTotal.Inc()
}

func IncMessagesMarkedRead() {
	messagesMarkedReadTotal.Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
