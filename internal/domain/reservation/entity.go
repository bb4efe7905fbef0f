package reservation

import "time"

// Reservation は予約エンティティを表す
// ホテルの在庫は1つだけで、全予約が同じ在庫を共有する
type Reservation struct {
	ID          string
	Name        string
	IDCard      string
	BookingDate time.Time
	StartDate   time.Time
	EndDate     time.Time
}

// New は入力を検証して新しい予約を作成する
// BookingDate には作成時刻 now が入る。ID はリポジトリが採番する
func New(name, idCard string, startDate, endDate, now time.Time) (*Reservation, error) {
	if err := validateFields(name, idCard, startDate, endDate, now); err != nil {
		return nil, err
	}
	return &Reservation{
		Name:        name,
		IDCard:      idCard,
		BookingDate: now,
		StartDate:   startDate,
		EndDate:     endDate,
	}, nil
}

// Update は入力を再検証して変更可能な項目を上書きする
// ID と BookingDate は変更しない
func (r *Reservation) Update(name, idCard string, startDate, endDate, now time.Time) error {
	if err := validateFields(name, idCard, startDate, endDate, now); err != nil {
		return err
	}
	r.Name = name
	r.IDCard = idCard
	r.StartDate = startDate
	r.EndDate = endDate
	return nil
}

// CanCreate は空き状況と開始日をもとに作成可能かを判定する
func (r *Reservation) CanCreate(isAvailable bool, now time.Time) error {
	if !isAvailable {
		return ErrDateRangeUnavailable
	}
	if !r.StartDate.After(now) {
		return ErrPastStart
	}
	return nil
}

// CanUpdate は日付が変わる場合のみ空き状況と開始日を再確認する
// 氏名や身分証番号だけの変更では再確認しない
func (r *Reservation) CanUpdate(startDate, endDate time.Time, isAvailable bool, now time.Time) error {
	if sameDay(r.StartDate, startDate) && sameDay(r.EndDate, endDate) {
		return nil
	}
	if !isAvailable {
		return ErrDateRangeUnavailable
	}
	// 開始済みの予約は日付変更不可、変更後の開始日も未来である必要がある
	if !r.StartDate.After(now) || !startDate.After(now) {
		return ErrPastStart
	}
	return nil
}

// CanCancel は開始前の予約のみキャンセルを許可する
func (r *Reservation) CanCancel(now time.Time) error {
	if !r.StartDate.After(now) {
		return ErrPastStart
	}
	return nil
}

// IsUpcoming は予約がまだ開始していないかを返す
func (r *Reservation) IsUpcoming(now time.Time) bool {
	return r.StartDate.After(now)
}
