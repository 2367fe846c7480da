package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/Falloukarim/colis-sn-sub000/internal/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPickupResult(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "ok", err: nil, want: PickupResultOK},
		{name: "invalid credential", err: apperror.Validation("qr_code", "invalid_credential", "QR invalide"), want: PickupResultInvalidCredential},
		{name: "not found", err: apperror.New(apperror.KindNotFound, "order_not_found", "introuvable"), want: PickupResultNotFound},
		{name: "forbidden", err: apperror.ErrForbidden, want: PickupResultForbidden},
		{name: "invalid state", err: apperror.InvalidState("remis", "déjà remise"), want: PickupResultInvalidState},
		{name: "lock contention", err: apperror.New(apperror.KindConflict, "pickup_in_progress", "en cours"), want: PickupResultLockContention},
		{name: "db", err: &pgconn.PgError{Code: "40001"}, want: PickupResultDB},
		{name: "unknown", err: errors.New("boom"), want: PickupResultUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyPickupResult(tc.err))
		})
	}
}

func TestLifecycleCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newLifecycleMetrics(registry, Config{ServiceName: "colis", Environment: "test"})

	m.IncTransition("en_cours", "disponible")
	m.IncTransition("en_cours", "disponible")
	m.IncTransition("disponible", "remis")
	m.ObservePickup(nil, 20*time.Millisecond)
	m.ObservePickup(apperror.InvalidState("remis", "déjà remise"), time.Millisecond)
	m.ObserveNotification("sms", NotificationStatusSent, 5*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.transitions.WithLabelValues("en_cours", "disponible")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transitions.WithLabelValues("disponible", "remis")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.pickupScans.WithLabelValues(PickupResultInvalidState)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notifications.WithLabelValues("sms", NotificationStatusSent)))

	families, err := registry.Gather()
	require.NoError(t, err)
	var histogram *dto.MetricFamily
	for _, family := range families {
		if family.GetName() == "colis_pickup_scan_duration_seconds" {
			histogram = family
		}
	}
	require.NotNil(t, histogram)
	assert.Equal(t, uint64(2), histogram.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestLifecycleNilSafe(t *testing.T) {
	var m *LifecycleMetrics
	m.IncTransition("en_cours", "disponible")
	m.ObservePickup(nil, time.Second)
	m.IncNumberCollision()
}
