package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	redisinfra "github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/redis"
)

// MockReservationRepository implements reservation.Repository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByIDCard(ctx context.Context, idCard string) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, idCard)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Create(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) Update(ctx context.Context, r *reservation.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationRepository) IsAvailable(ctx context.Context, startDate, endDate time.Time, excludeID string) (bool, error) {
	args := m.Called(ctx, startDate, endDate, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) CountStartingAfter(ctx context.Context, t time.Time) (int, error) {
	args := m.Called(ctx, t)
	return args.Int(0), args.Error(1)
}

// MockLockManager implements redisinfra.LockManagerInterface
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

func (m *MockLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (redisinfra.Lock, error) {
	args := m.Called(ctx, key, ttl, maxRetries, retryDelay)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(redisinfra.Lock), args.Error(1)
}

// MockLock implements redisinfra.Lock
type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLock) Extend(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}

// MockAvailabilityCache implements AvailabilityCache
type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) Get(ctx context.Context, startDate, endDate time.Time) (bool, error) {
	args := m.Called(ctx, startDate, endDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockAvailabilityCache) Set(ctx context.Context, startDate, endDate time.Time, available bool) error {
	args := m.Called(ctx, startDate, endDate, available)
	return args.Error(0)
}

func (m *MockAvailabilityCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher implements EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, ev reservation.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
