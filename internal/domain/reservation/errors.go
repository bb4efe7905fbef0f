package reservation

import "errors"

// Kind は検証エラーの種別を表す
type Kind string

const (
	KindNameRequired           Kind = "name_required"
	KindNameLengthOutOfRange   Kind = "name_length_out_of_range"
	KindIDCardRequired         Kind = "id_card_required"
	KindIDCardLengthOutOfRange Kind = "id_card_length_out_of_range"
	KindDateRequired           Kind = "date_required"
	KindEndBeforeStart         Kind = "end_before_start"
	KindStayTooLong            Kind = "stay_too_long"
	KindTooFarInAdvance        Kind = "too_far_in_advance"
	KindPastStart              Kind = "past_start"
)

// ValidationError はフィールド形式または業務ルール違反を表す
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Reservation ドメインのエラー定義
var (
	ErrNameRequired           = &ValidationError{Kind: KindNameRequired, Message: "氏名は必須です"}
	ErrNameLengthOutOfRange   = &ValidationError{Kind: KindNameLengthOutOfRange, Message: "氏名は3文字以上100文字以下である必要があります"}
	ErrIDCardRequired         = &ValidationError{Kind: KindIDCardRequired, Message: "身分証番号は必須です"}
	ErrIDCardLengthOutOfRange = &ValidationError{Kind: KindIDCardLengthOutOfRange, Message: "身分証番号は1文字以上20文字以下である必要があります"}
	ErrDateRequired           = &ValidationError{Kind: KindDateRequired, Message: "開始日と終了日は必須です"}
	ErrEndBeforeStart         = &ValidationError{Kind: KindEndBeforeStart, Message: "終了日は開始日以降である必要があります"}
	ErrStayTooLong            = &ValidationError{Kind: KindStayTooLong, Message: "滞在期間は3日を超えられません"}
	ErrTooFarInAdvance        = &ValidationError{Kind: KindTooFarInAdvance, Message: "30日より先の予約はできません"}
	ErrPastStart              = &ValidationError{Kind: KindPastStart, Message: "開始済みまたは過去の予約は操作できません"}

	ErrDateRangeUnavailable = errors.New("指定された期間は予約できません")
	ErrReservationNotFound  = errors.New("予約が見つかりません")
)

// KindOf はエラーが検証エラーであればその種別を返す
func KindOf(err error) (Kind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}
