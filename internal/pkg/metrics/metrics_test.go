package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatheredNames(t *testing.T, reg *prometheus.Registry) map[string]int {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]int, len(families))
	for _, f := range families {
		names[f.GetName()] = len(f.GetMetric())
	}
	return names
}

func TestNewWithRegistry(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.ReservationsTotal)
	assert.NotNil(t, m.AvailabilityChecksTotal)
	assert.NotNil(t, m.AvailabilityCacheTotal)
	assert.NotNil(t, m.DistributedLockDuration)
	assert.NotNil(t, m.UpcomingReservations)
}

func TestNewWithRegistry_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWithRegistry(reg)

	assert.Panics(t, func() { NewWithRegistry(reg) })
}

func TestReservationsTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.ReservationsTotal.WithLabelValues("create", "success").Inc()
	m.ReservationsTotal.WithLabelValues("create", "success").Inc()
	m.ReservationsTotal.WithLabelValues("create", "conflict").Inc()
	m.ReservationsTotal.WithLabelValues("cancel", "not_found").Inc()

	assert.Equal(t, 3, gatheredNames(t, reg)["reservations_total"])
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ReservationsTotal.WithLabelValues("create", "success")))
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/:id", "200").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/", "201").Inc()
	m.HTTPRequestsTotal.WithLabelValues("POST", "/", "500").Inc()
	m.HTTPRequestDuration.WithLabelValues("GET", "/:id").Observe(0.025)

	names := gatheredNames(t, reg)
	assert.Equal(t, 3, names["http_requests_total"])
	assert.Equal(t, 1, names["http_request_duration_seconds"])
}

func TestAvailabilityCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.AvailabilityChecksTotal.WithLabelValues("available").Inc()
	m.AvailabilityChecksTotal.WithLabelValues("unavailable").Inc()
	m.AvailabilityCacheTotal.WithLabelValues("hit").Inc()
	m.AvailabilityCacheTotal.WithLabelValues("miss").Inc()
	m.AvailabilityCacheTotal.WithLabelValues("miss").Inc()

	names := gatheredNames(t, reg)
	assert.Equal(t, 2, names["availability_checks_total"])
	assert.Equal(t, 2, names["availability_cache_total"])
	assert.Equal(t, float64(2), testutil.ToFloat64(m.AvailabilityCacheTotal.WithLabelValues("miss")))
}

func TestDistributedLockDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.DistributedLockDuration.WithLabelValues("acquire", "success").Observe(0.015)
	m.DistributedLockDuration.WithLabelValues("acquire", "failed").Observe(0.005)
	m.DistributedLockDuration.WithLabelValues("release", "success").Observe(0.002)

	assert.Equal(t, 3, gatheredNames(t, reg)["distributed_lock_duration_seconds"])
}

func TestUpcomingReservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.UpcomingReservations.Set(5)
	assert.Equal(t, float64(5), testutil.ToFloat64(m.UpcomingReservations))

	m.UpcomingReservations.Set(0)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.UpcomingReservations))
}

func TestGet_ReturnsDefaultMetrics(t *testing.T) {
	oldMetrics := defaultMetrics
	defer func() { defaultMetrics = oldMetrics }()

	// Initはデフォルトレジストリに登録するため、テストでは直接セットする
	m := NewWithRegistry(prometheus.NewRegistry())
	defaultMetrics = m

	assert.Equal(t, m, Get())
}
