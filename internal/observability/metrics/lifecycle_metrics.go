package metrics

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	orderdomain "github.com/Falloukarim/colis-sn-sub000/internal/order/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	PickupResultOK                = "ok"
	PickupResultInvalidCredential = "invalid_credential"
	PickupResultNotFound          = "not_found"
	PickupResultForbidden         = "forbidden"
	PickupResultInvalidState      = "invalid_state"
	PickupResultLockContention    = "lock_contention"
	PickupResultDB                = "db"
	PickupResultUnknown           = "unknown"
)

const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// LifecycleMetrics tracks order state transitions, pickup scans and
// notification dispatch on the Prometheus registry served at /metrics.
type LifecycleMetrics struct {
	transitions          *prometheus.CounterVec
	transitionRejections *prometheus.CounterVec
	pickupScans          *prometheus.CounterVec
	pickupDuration       prometheus.Observer
	notifications        *prometheus.CounterVec
	notificationDuration *prometheus.HistogramVec
	numberCollisions     prometheus.Counter
	transitionCounts     map[string]map[string]prometheus.Counter
}

var (
	lifecycleMetricsOnce sync.Once
	lifecycleMetrics     *LifecycleMetrics
)

// Lifecycle returns the singleton lifecycle metrics registry.
func Lifecycle() *LifecycleMetrics {
	return LifecycleWithConfig(Config{})
}

// LifecycleWithConfig returns the singleton lifecycle metrics registry using config labels.
func LifecycleWithConfig(cfg Config) *LifecycleMetrics {
	lifecycleMetricsOnce.Do(func() {
		lifecycleMetrics = newLifecycleMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return lifecycleMetrics
}

// ResetLifecycleMetricsForTest resets the lifecycle metrics singleton for tests.
func ResetLifecycleMetricsForTest() {
	lifecycleMetricsOnce = sync.Once{}
	lifecycleMetrics = nil
}

func newLifecycleMetrics(registerer prometheus.Registerer, cfg Config) *LifecycleMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "colis"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "colis_order_transition_total",
		Help:        "Order status transitions applied.",
		ConstLabels: constLabels,
	}, []string{"from", "to"})
	transitionRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "colis_order_transition_rejected_total",
		Help:        "Order status transitions refused by the state machine.",
		ConstLabels: constLabels,
	}, []string{"current", "requested"})
	pickupScans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "colis_pickup_scan_total",
		Help:        "Pickup scans by low-cardinality result.",
		ConstLabels: constLabels,
	}, []string{"result"})
	pickupDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "colis_pickup_scan_duration_seconds",
		Help:        "Pickup validation latency including the database transition.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "colis_notification_dispatch_total",
		Help:        "Notification dispatch attempts by channel and outcome.",
		ConstLabels: constLabels,
	}, []string{"channel", "status"})
	notificationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "colis_notification_dispatch_duration_seconds",
		Help:        "Time spent handing a message to its channel.",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"channel"})
	numberCollisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "colis_order_number_collision_total",
		Help:        "Generated order numbers discarded because they already existed.",
		ConstLabels: constLabels,
	})

	registerer.MustRegister(
		transitions,
		transitionRejections,
		pickupScans,
		pickupDuration,
		notifications,
		notificationDuration,
		numberCollisions,
	)

	enCours := string(orderdomain.StatusEnCours)
	disponible := string(orderdomain.StatusDisponible)
	remis := string(orderdomain.StatusRemis)
	transitionCounts := map[string]map[string]prometheus.Counter{
		enCours: {
			disponible: transitions.WithLabelValues(enCours, disponible),
		},
		disponible: {
			remis: transitions.WithLabelValues(disponible, remis),
		},
	}

	return &LifecycleMetrics{
		transitions:          transitions,
		transitionRejections: transitionRejections,
		pickupScans:          pickupScans,
		pickupDuration:       pickupDuration,
		notifications:        notifications,
		notificationDuration: notificationDuration,
		numberCollisions:     numberCollisions,
		transitionCounts:     transitionCounts,
	}
}

// IncTransition increments the applied transition counter.
func (m *LifecycleMetrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	if toCounters, ok := m.transitionCounts[from]; ok {
		if counter, ok := toCounters[to]; ok {
			counter.Inc()
			return
		}
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// IncTransitionRejected counts a refused transition.
func (m *LifecycleMetrics) IncTransitionRejected(current, requested string) {
	if m == nil || m.transitionRejections == nil {
		return
	}
	m.transitionRejections.WithLabelValues(current, requested).Inc()
}

// ObservePickup records a pickup scan result and its latency.
func (m *LifecycleMetrics) ObservePickup(err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.pickupScans.WithLabelValues(ClassifyPickupResult(err)).Inc()
	if m.pickupDuration != nil {
		m.pickupDuration.Observe(duration.Seconds())
	}
}

// ObserveNotification records a dispatch attempt on channel.
func (m *LifecycleMetrics) ObserveNotification(channel, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, status).Inc()
	if m.notificationDuration != nil {
		m.notificationDuration.WithLabelValues(channel).Observe(duration.Seconds())
	}
}

// IncNumberCollision counts an order number rejected as already taken.
func (m *LifecycleMetrics) IncNumberCollision() {
	if m == nil || m.numberCollisions == nil {
		return
	}
	m.numberCollisions.Inc()
}

// ClassifyPickupResult maps pickup errors to low-cardinality results.
func ClassifyPickupResult(err error) string {
	if err == nil {
		return PickupResultOK
	}
	if appErr, ok := apperror.As(err); ok {
		switch appErr.Kind {
		case apperror.KindValidation:
			return PickupResultInvalidCredential
		case apperror.KindNotFound:
			return PickupResultNotFound
		case apperror.KindForbidden, apperror.KindUnauthorized:
			return PickupResultForbidden
		case apperror.KindInvalidState:
			return PickupResultInvalidState
		case apperror.KindConflict, apperror.KindRateLimited:
			return PickupResultLockContention
		}
	}
	if isDBError(err) {
		return PickupResultDB
	}
	return PickupResultUnknown
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidDB) ||
		errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidData) ||
		errors.Is(err, gorm.ErrMissingWhereClause) ||
		errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}
