package reservation

import (
	"context"
	"time"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// GetByID はIDから予約を取得する（存在しない場合は ErrReservationNotFound）
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetByIDCard は身分証番号に紐づく予約一覧を取得する（0件でもエラーにしない）
	GetByIDCard(ctx context.Context, idCard string) ([]*Reservation, error)

	// Create は新しい予約を保存し、採番したIDを設定する
	Create(ctx context.Context, r *Reservation) error

	// Update は予約を置き換える
	Update(ctx context.Context, r *Reservation) error

	// Delete は予約を物理削除する
	Delete(ctx context.Context, id string) error

	// IsAvailable は期間が既存予約と衝突しないかを返す
	// excludeID が空でなければそのIDの予約は判定から除外する。判定条件は Overlaps と同じ
	IsAvailable(ctx context.Context, startDate, endDate time.Time, excludeID string) (bool, error)

	// CountStartingAfter は指定時刻より後に開始する予約数を返す
	CountStartingAfter(ctx context.Context, t time.Time) (int, error)
}
