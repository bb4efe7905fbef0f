package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
)

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.ReservationInput) error
	UpdateReservation(ctx context.Context, input application.ReservationInput) (application.Result[*reservation.Reservation], error)
	CancelReservation(ctx context.Context, id string) (application.Result[string], error)
	GetReservation(ctx context.Context, id string) (application.Result[*reservation.Reservation], error)
	GetReservationsByIDCard(ctx context.Context, idCard string) ([]*reservation.Reservation, error)
	CheckAvailability(ctx context.Context, startDate, endDate time.Time) (bool, error)
}
