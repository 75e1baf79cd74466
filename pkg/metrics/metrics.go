package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "probook"

var (
	once sync.Once

	reservationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Reservation creation attempts by outcome.",
		},
		[]string{"result"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_transitions_total",
			Help:      "Lifecycle commands by source status, target status and outcome.",
		},
		[]string{"from", "to", "result"},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_checks_total",
			Help:      "Conflict checks by answer.",
		},
		[]string{"free"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		},
		[]string{"method", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method"},
	)

	kafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Kafka messages by direction, topic and outcome.",
		},
		[]string{"direction", "topic", "result"},
	)

	kafkaDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_operation_duration_seconds",
			Help:      "Time spent publishing or handling a Kafka message.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"direction"},
	)

	notificationsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dispatched_total",
			Help:      "Lifecycle notifications routed to a recipient.",
		},
		[]string{"recipient", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationsCreated,
			transitions,
			availabilityChecks,
			httpRequests,
			httpDuration,
			kafkaMessages,
			kafkaDuration,
			notificationsDispatched,
		)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncReservationCreated(result string) {
	reservationsCreated.WithLabelValues(result).Inc()
}

func IncTransition(from, to, result string) {
	transitions.WithLabelValues(from, to, result).Inc()
}

func IncAvailabilityCheck(free bool) {
	availabilityChecks.WithLabelValues(strconv.FormatBool(free)).Inc()
}

func ObserveHTTPRequest(method string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func ObserveKafka(direction, topic string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	kafkaMessages.WithLabelValues(direction, topic, result).Inc()
	kafkaDuration.WithLabelValues(direction).Observe(d.Seconds())
}

func IncNotificationDispatched(recipient, status string) {
	notificationsDispatched.WithLabelValues(recipient, status).Inc()
}
