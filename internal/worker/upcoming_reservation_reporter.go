package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
)

// ReservationCounter は開始前の予約数を数えるインターフェース
type ReservationCounter interface {
	CountUpcomingReservations(ctx context.Context) (int, error)
}

// GaugeSetter は集計結果の出力先（prometheus.Gauge を想定）
type GaugeSetter interface {
	Set(float64)
}

// UpcomingReservationReporter は開始前の予約数を定期的に集計してゲージに反映するワーカー
type UpcomingReservationReporter struct {
	counter  ReservationCounter
	gauge    GaugeSetter
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewUpcomingReservationReporter は新しいレポーターを作成
func NewUpcomingReservationReporter(
	counter ReservationCounter,
	gauge GaugeSetter,
	interval time.Duration,
) *UpcomingReservationReporter {
	return &UpcomingReservationReporter{
		counter:  counter,
		gauge:    gauge,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はレポーターを開始する。起動直後に一度集計する
func (r *UpcomingReservationReporter) Start(ctx context.Context) {
	logger.Info("予約数レポーター開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	r.report(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("予約数レポーター停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("予約数レポーター停止（シグナル受信）")
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

// Stop はレポーターを停止し、Start の終了を待つ
func (r *UpcomingReservationReporter) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *UpcomingReservationReporter) report(ctx context.Context) {
	log := logger.Get()

	count, err := r.counter.CountUpcomingReservations(ctx)
	if err != nil {
		log.Error("開始前予約数の集計失敗", zap.Error(err))
		return
	}

	r.gauge.Set(float64(count))
	log.Debug("開始前予約数を更新", zap.Int("count", count))
}
