package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約操作の総数（operation: create/update/cancel, status: success/invalid/conflict/not_found/lock_failed/error）
	ReservationsTotal *prometheus.CounterVec

	// 空き状況確認の総数（result: available/unavailable/invalid/error）
	AvailabilityChecksTotal *prometheus.CounterVec

	// 空き状況キャッシュの参照結果（result: hit/miss/error）
	AvailabilityCacheTotal *prometheus.CounterVec

	// 在庫ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 開始前の予約数
	UpcomingReservations prometheus.Gauge
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of reservation operations",
			},
			[]string{"operation", "status"},
		),
		AvailabilityChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "availability_checks_total",
				Help: "Total number of availability checks",
			},
			[]string{"result"},
		),
		AvailabilityCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "availability_cache_total",
				Help: "Availability cache lookups",
			},
			[]string{"result"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on inventory lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		UpcomingReservations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "upcoming_reservations",
				Help: "Current number of reservations that have not started yet",
			},
		),
	}

	// レジストリに登録
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.AvailabilityChecksTotal,
		m.AvailabilityCacheTotal,
		m.DistributedLockDuration,
		m.UpcomingReservations,
	)

	return m
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
