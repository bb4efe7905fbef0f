package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
)

type reservationRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	IDCard      string    `db:"id_card"`
	BookingDate time.Time `db:"booking_date"`
	StartDate   time.Time `db:"start_date"`
	EndDate     time.Time `db:"end_date"`
}

const selectColumns = `SELECT id, name, id_card, booking_date, start_date, end_date FROM reservations`

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	id := uuid.New().String()
	query := `INSERT INTO reservations (id, name, id_card, booking_date, start_date, end_date) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, id, res.Name, res.IDCard, res.BookingDate, res.StartDate, res.EndDate); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	res.ID = id
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	// UUID形式でないIDは存在しないものとして扱う
	if _, err := uuid.Parse(id); err != nil {
		return nil, reservation.ErrReservationNotFound
	}
	var row reservationRow
	if err := r.db.GetContext(ctx, &row, selectColumns+` WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) GetByIDCard(ctx context.Context, idCard string) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := r.db.SelectContext(ctx, &rows, selectColumns+` WHERE id_card = $1 ORDER BY start_date`, idCard); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	query := `UPDATE reservations SET name = $1, id_card = $2, start_date = $3, end_date = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, res.Name, res.IDCard, res.StartDate, res.EndDate, res.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("予約削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// IsAvailable は候補期間の両端のどちらかが既存予約の期間内（両端を含む）にあれば予約不可とする
func (r *ReservationRepository) IsAvailable(ctx context.Context, startDate, endDate time.Time, excludeID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM reservations
		WHERE ((start_date <= $1 AND $1 <= end_date) OR (start_date <= $2 AND $2 <= end_date))
		AND ($3 = '' OR id::text <> $3)
	)`
	var conflict bool
	if err := r.db.GetContext(ctx, &conflict, query, startDate, endDate, excludeID); err != nil {
		return false, fmt.Errorf("空き状況確認に失敗: %w", err)
	}
	return !conflict, nil
}

func (r *ReservationRepository) CountStartingAfter(ctx context.Context, t time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reservations WHERE start_date > $1`, t); err != nil {
		return 0, fmt.Errorf("予約数取得に失敗: %w", err)
	}
	return count, nil
}

func (row *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID: row.ID, Name: row.Name, IDCard: row.IDCard,
		BookingDate: row.BookingDate, StartDate: row.StartDate, EndDate: row.EndDate,
	}
}

var _ reservation.Repository = (*ReservationRepository)(nil)
