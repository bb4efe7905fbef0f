package reservation

import (
	"time"
	"unicode/utf8"
)

// 入力値の制約
const (
	NameMinLength   = 3
	NameMaxLength   = 100
	IDCardMinLength = 1
	IDCardMaxLength = 20

	// MaxStay は1回の滞在の上限
	MaxStay = 3 * 24 * time.Hour
	// BookingHorizon は現在時刻から開始日までの最大リードタイム
	BookingHorizon = 30 * 24 * time.Hour
)

// ValidateGuest は宿泊者情報の形式を検証する
func ValidateGuest(name, idCard string) error {
	if name == "" {
		return ErrNameRequired
	}
	if n := utf8.RuneCountInString(name); n < NameMinLength || n > NameMaxLength {
		return ErrNameLengthOutOfRange
	}
	if idCard == "" {
		return ErrIDCardRequired
	}
	if n := utf8.RuneCountInString(idCard); n < IDCardMinLength || n > IDCardMaxLength {
		return ErrIDCardLengthOutOfRange
	}
	return nil
}

// ValidateStay は宿泊期間の業務ルールを検証する
// 開始日が過去かどうかはここでは扱わない（CanCreate などのガードで確認する）
func ValidateStay(start, end, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrDateRequired
	}
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	if end.Sub(start) > MaxStay {
		return ErrStayTooLong
	}
	if start.After(now.Add(BookingHorizon)) {
		return ErrTooFarInAdvance
	}
	return nil
}

func validateFields(name, idCard string, start, end, now time.Time) error {
	if err := ValidateGuest(name, idCard); err != nil {
		return err
	}
	return ValidateStay(start, end, now)
}
