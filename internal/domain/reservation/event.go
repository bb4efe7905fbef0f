package reservation

import "time"

// EventType は予約のライフサイクルイベント種別
type EventType string

const (
	EventCreated   EventType = "reservation.created"
	EventUpdated   EventType = "reservation.updated"
	EventCancelled EventType = "reservation.cancelled"
)

// Event は予約の状態変化を外部に通知するためのイベント
type Event struct {
	Type          EventType `json:"type"`
	ReservationID string    `json:"reservation_id"`
	IDCard        string    `json:"id_card"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewEvent は予約からイベントを生成する
func NewEvent(t EventType, r *Reservation, now time.Time) Event {
	return Event{
		Type:          t,
		ReservationID: r.ID,
		IDCard:        r.IDCard,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		OccurredAt:    now,
	}
}
