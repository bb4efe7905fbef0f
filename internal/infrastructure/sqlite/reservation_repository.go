package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
)

// 日時は UnixNano の INTEGER で保存する
type reservationRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	IDCard      string `db:"id_card"`
	BookingDate int64  `db:"booking_date"`
	StartDate   int64  `db:"start_date"`
	EndDate     int64  `db:"end_date"`
}

const selectColumns = `SELECT id, name, id_card, booking_date, start_date, end_date FROM reservations`

var schema = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		id_card TEXT NOT NULL,
		booking_date INTEGER NOT NULL,
		start_date INTEGER NOT NULL,
		end_date INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_id_card ON reservations(id_card);`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_period ON reservations(start_date, end_date);`,
}

// Open はSQLiteファイルを開き、スキーマを作成する
func Open(path string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(filepath.Clean(path)), 0o750); err != nil {
		return nil, fmt.Errorf("データディレクトリ作成に失敗: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("SQLite接続に失敗: %w", err)
	}
	// 書き込みは1接続に直列化する
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, errors.Join(fmt.Errorf("スキーマ作成に失敗: %w", err), db.Close())
		}
	}
	return db, nil
}

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	id := uuid.New().String()
	query := `INSERT INTO reservations (id, name, id_card, booking_date, start_date, end_date) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, id, res.Name, res.IDCard,
		res.BookingDate.UnixNano(), res.StartDate.UnixNano(), res.EndDate.UnixNano()); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	res.ID = id
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var row reservationRow
	if err := r.db.GetContext(ctx, &row, selectColumns+` WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) GetByIDCard(ctx context.Context, idCard string) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := r.db.SelectContext(ctx, &rows, selectColumns+` WHERE id_card = ? ORDER BY start_date`, idCard); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *reservation.Reservation) error {
	query := `UPDATE reservations SET name = ?, id_card = ?, start_date = ?, end_date = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, res.Name, res.IDCard, res.StartDate.UnixNano(), res.EndDate.UnixNano(), res.ID)
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
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
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
		WHERE ((start_date <= ? AND ? <= end_date) OR (start_date <= ? AND ? <= end_date))
		AND (? = '' OR id <> ?)
	)`
	s, e := startDate.UnixNano(), endDate.UnixNano()
	var conflict bool
	if err := r.db.GetContext(ctx, &conflict, query, s, s, e, e, excludeID, excludeID); err != nil {
		return false, fmt.Errorf("空き状況確認に失敗: %w", err)
	}
	return !conflict, nil
}

func (r *ReservationRepository) CountStartingAfter(ctx context.Context, t time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reservations WHERE start_date > ?`, t.UnixNano()); err != nil {
		return 0, fmt.Errorf("予約数取得に失敗: %w", err)
	}
	return count, nil
}

func (row *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID:          row.ID,
		Name:        row.Name,
		IDCard:      row.IDCard,
		BookingDate: time.Unix(0, row.BookingDate).UTC(),
		StartDate:   time.Unix(0, row.StartDate).UTC(),
		EndDate:     time.Unix(0, row.EndDate).UTC(),
	}
}

var _ reservation.Repository = (*ReservationRepository)(nil)
