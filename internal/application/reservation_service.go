package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	redisinfra "github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/metrics"
)

// 在庫は1つなので作成と更新は単一のロックで直列化する
const (
	inventoryLockKey = "reservation:inventory"
	inventoryLockTTL = 10 * time.Second
	lockMaxRetries   = 3
	lockRetryDelay   = 100 * time.Millisecond
)

// メトリクスのラベル値
const (
	operationCreate = "create"
	operationUpdate = "update"
	operationCancel = "cancel"

	statusSuccess    = "success"
	statusInvalid    = "invalid"
	statusConflict   = "conflict"
	statusNotFound   = "not_found"
	statusLockFailed = "lock_failed"
	statusError      = "error"
)

var ErrInventoryBusy = errors.New("他の予約処理が実行中です。しばらくしてから再度お試しください")

// AvailabilityCache は空き状況のキャッシュ
type AvailabilityCache interface {
	Get(ctx context.Context, startDate, endDate time.Time) (bool, error)
	Set(ctx context.Context, startDate, endDate time.Time, available bool) error
	Invalidate(ctx context.Context) error
}

// EventPublisher は予約イベントの配信先
type EventPublisher interface {
	Publish(ctx context.Context, ev reservation.Event) error
}

type ReservationService struct {
	repo        reservation.Repository
	lockManager redisinfra.LockManagerInterface
	cache       AvailabilityCache
	publisher   EventPublisher
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewReservationService は予約サービスを作成する
// lockManager, cache, publisher, m は nil でもよい
func NewReservationService(repo reservation.Repository, lockManager redisinfra.LockManagerInterface, cache AvailabilityCache, publisher EventPublisher, m *metrics.Metrics) *ReservationService {
	return &ReservationService{
		repo:        repo,
		lockManager: lockManager,
		cache:       cache,
		publisher:   publisher,
		metrics:     m,
		now:         time.Now,
	}
}

type ReservationInput struct {
	ID        string
	Name      string
	IDCard    string
	StartDate time.Time
	EndDate   time.Time
}

func (s *ReservationService) CreateReservation(ctx context.Context, input ReservationInput) error {
	now := s.now()
	res, err := reservation.New(input.Name, input.IDCard, input.StartDate, input.EndDate, now)
	if err != nil {
		s.recordReservation(operationCreate, statusInvalid)
		return err
	}

	unlock, err := s.lockInventory(ctx)
	if err != nil {
		s.recordReservation(operationCreate, statusLockFailed)
		return err
	}
	defer unlock()

	available, err := s.repo.IsAvailable(ctx, res.StartDate, res.EndDate, "")
	if err != nil {
		s.recordReservation(operationCreate, statusError)
		return fmt.Errorf("空き状況確認に失敗: %w", err)
	}
	if err := res.CanCreate(available, now); err != nil {
		s.recordReservation(operationCreate, guardStatus(err))
		return err
	}

	if err := s.repo.Create(ctx, res); err != nil {
		s.recordReservation(operationCreate, statusError)
		return err
	}

	s.recordReservation(operationCreate, statusSuccess)
	s.afterWrite(ctx, reservation.EventCreated, res, now)
	logger.Info("予約を作成しました", zap.String("reservation_id", res.ID))
	return nil
}

// UpdateReservation は予約を更新する
// IDが空または存在しない場合は NotFound を返す
func (s *ReservationService) UpdateReservation(ctx context.Context, input ReservationInput) (Result[*reservation.Reservation], error) {
	if input.ID == "" {
		return NotFound[*reservation.Reservation](), nil
	}
	now := s.now()

	unlock, err := s.lockInventory(ctx)
	if err != nil {
		s.recordReservation(operationUpdate, statusLockFailed)
		return NotFound[*reservation.Reservation](), err
	}
	defer unlock()

	res, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			s.recordReservation(operationUpdate, statusNotFound)
			return NotFound[*reservation.Reservation](), nil
		}
		s.recordReservation(operationUpdate, statusError)
		return NotFound[*reservation.Reservation](), err
	}

	available, err := s.repo.IsAvailable(ctx, input.StartDate, input.EndDate, res.ID)
	if err != nil {
		s.recordReservation(operationUpdate, statusError)
		return NotFound[*reservation.Reservation](), fmt.Errorf("空き状況確認に失敗: %w", err)
	}
	if err := res.CanUpdate(input.StartDate, input.EndDate, available, now); err != nil {
		s.recordReservation(operationUpdate, guardStatus(err))
		return NotFound[*reservation.Reservation](), err
	}
	if err := res.Update(input.Name, input.IDCard, input.StartDate, input.EndDate, now); err != nil {
		s.recordReservation(operationUpdate, statusInvalid)
		return NotFound[*reservation.Reservation](), err
	}

	if err := s.repo.Update(ctx, res); err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			s.recordReservation(operationUpdate, statusNotFound)
			return NotFound[*reservation.Reservation](), nil
		}
		s.recordReservation(operationUpdate, statusError)
		return NotFound[*reservation.Reservation](), err
	}

	s.recordReservation(operationUpdate, statusSuccess)
	s.afterWrite(ctx, reservation.EventUpdated, res, now)
	logger.Info("予約を更新しました", zap.String("reservation_id", res.ID))
	return Found(res), nil
}

// CancelReservation は開始前の予約を削除し、削除したIDを返す
func (s *ReservationService) CancelReservation(ctx context.Context, id string) (Result[string], error) {
	now := s.now()
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			s.recordReservation(operationCancel, statusNotFound)
			return NotFound[string](), nil
		}
		s.recordReservation(operationCancel, statusError)
		return NotFound[string](), err
	}
	if err := res.CanCancel(now); err != nil {
		s.recordReservation(operationCancel, statusInvalid)
		return NotFound[string](), err
	}

	if err := s.repo.Delete(ctx, res.ID); err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			s.recordReservation(operationCancel, statusNotFound)
			return NotFound[string](), nil
		}
		s.recordReservation(operationCancel, statusError)
		return NotFound[string](), err
	}

	s.recordReservation(operationCancel, statusSuccess)
	s.afterWrite(ctx, reservation.EventCancelled, res, now)
	logger.Info("予約をキャンセルしました", zap.String("reservation_id", res.ID))
	return Found(res.ID), nil
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (Result[*reservation.Reservation], error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservation.ErrReservationNotFound) {
			return NotFound[*reservation.Reservation](), nil
		}
		return NotFound[*reservation.Reservation](), err
	}
	return Found(res), nil
}

// GetReservationsByIDCard は身分証番号に紐づく予約を返す（0件は空スライス）
func (s *ReservationService) GetReservationsByIDCard(ctx context.Context, idCard string) ([]*reservation.Reservation, error) {
	list, err := s.repo.GetByIDCard(ctx, idCard)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*reservation.Reservation{}
	}
	return list, nil
}

// CheckAvailability は期間を検証したうえで空き状況を返す
func (s *ReservationService) CheckAvailability(ctx context.Context, startDate, endDate time.Time) (bool, error) {
	if err := reservation.ValidateStay(startDate, endDate, s.now()); err != nil {
		s.recordAvailability("invalid")
		return false, err
	}

	if available, ok := s.cachedAvailability(ctx, startDate, endDate); ok {
		s.recordAvailability(availabilityLabel(available))
		return available, nil
	}

	available, err := s.repo.IsAvailable(ctx, startDate, endDate, "")
	if err != nil {
		s.recordAvailability(statusError)
		return false, fmt.Errorf("空き状況確認に失敗: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, startDate, endDate, available); err != nil {
			logger.Warn("空き状況キャッシュの保存に失敗しました", zap.Error(err))
		}
	}
	s.recordAvailability(availabilityLabel(available))
	return available, nil
}

// CountUpcomingReservations は開始前の予約数を返す
func (s *ReservationService) CountUpcomingReservations(ctx context.Context) (int, error) {
	return s.repo.CountStartingAfter(ctx, s.now())
}

func (s *ReservationService) lockInventory(ctx context.Context) (func(), error) {
	if s.lockManager == nil {
		return func() {}, nil
	}

	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, inventoryLockKey, inventoryLockTTL, lockMaxRetries, lockRetryDelay)
	if err != nil {
		s.observeLock("acquire", "failed", start)
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return nil, ErrInventoryBusy
		}
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	s.observeLock("acquire", statusSuccess, start)

	return func() {
		releaseStart := time.Now()
		if err := lock.Release(ctx); err != nil {
			s.observeLock("release", "failed", releaseStart)
			logger.Warn("ロック解放に失敗しました", zap.Error(err))
			return
		}
		s.observeLock("release", statusSuccess, releaseStart)
	}, nil
}

func (s *ReservationService) cachedAvailability(ctx context.Context, startDate, endDate time.Time) (bool, bool) {
	if s.cache == nil {
		return false, false
	}
	available, err := s.cache.Get(ctx, startDate, endDate)
	switch {
	case err == nil:
		s.recordCache("hit")
		return available, true
	case errors.Is(err, redisinfra.ErrCacheMiss):
		s.recordCache("miss")
	default:
		s.recordCache(statusError)
		logger.Warn("空き状況キャッシュの取得に失敗しました", zap.Error(err))
	}
	return false, false
}

// afterWrite はキャッシュ無効化とイベント配信を行う。どちらの失敗も呼び出し元には返さない
func (s *ReservationService) afterWrite(ctx context.Context, t reservation.EventType, res *reservation.Reservation, now time.Time) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Warn("空き状況キャッシュの無効化に失敗しました", zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, reservation.NewEvent(t, res, now)); err != nil {
			logger.Warn("予約イベントの配信に失敗しました",
				zap.String("type", string(t)),
				zap.String("reservation_id", res.ID),
				zap.Error(err),
			)
		}
	}
}

func guardStatus(err error) string {
	if errors.Is(err, reservation.ErrDateRangeUnavailable) {
		return statusConflict
	}
	return statusInvalid
}

func availabilityLabel(available bool) string {
	if available {
		return "available"
	}
	return "unavailable"
}

func (s *ReservationService) recordReservation(operation, status string) {
	if s.metrics != nil {
		s.metrics.ReservationsTotal.WithLabelValues(operation, status).Inc()
	}
}

func (s *ReservationService) recordAvailability(result string) {
	if s.metrics != nil {
		s.metrics.AvailabilityChecksTotal.WithLabelValues(result).Inc()
	}
}

func (s *ReservationService) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.AvailabilityCacheTotal.WithLabelValues(result).Inc()
	}
}

func (s *ReservationService) observeLock(operation, status string, start time.Time) {
	if s.metrics != nil {
		s.metrics.DistributedLockDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
	}
}
