package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type. Incremented by the
	// cache package's client hook.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisper_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// MessagesSent counts pool and friend messages accepted for delivery.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisper_messages_sent_total",
		Help: "Total number of messages created, by kind (anonymous|friend)",
	}, []string{"kind"})

	// MessagesDelivered counts successful random-delivery claims.
	MessagesDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whisper_messages_delivered_total",
		Help: "Total number of pool messages claimed by a receiver",
	})

	// CoinsSpent sums coins debited per paid action.
	CoinsSpent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whisper_coins_spent_total",
		Help: "Total coins debited, by action",
	}, []string{"action"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-metrics handler for the app.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
