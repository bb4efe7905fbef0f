package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateGuest_CountsRunes(t *testing.T) {
	// マルチバイト文字はバイト数ではなく文字数で数える
	assert.NoError(t, ValidateGuest("山田太", "A"))
	assert.ErrorIs(t, ValidateGuest("山田", "A"), ErrNameLengthOutOfRange)
}

func TestValidateStay(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"有効な期間", day(1), day(2), nil},
		{"過去の期間も形式上は有効", day(-3), day(-2), nil},
		{"開始日がゼロ値", time.Time{}, day(2), ErrDateRequired},
		{"終了日が開始日より1ナノ秒前", day(2), day(2).Add(-time.Nanosecond), ErrEndBeforeStart},
		{"滞在が上限ちょうど", day(1), day(1).Add(MaxStay), nil},
		{"滞在が上限を1ナノ秒超える", day(1), day(1).Add(MaxStay + time.Nanosecond), ErrStayTooLong},
		{"開始日が受付期限を1秒超える", testNow.Add(BookingHorizon + time.Second), testNow.Add(BookingHorizon + time.Hour), ErrTooFarInAdvance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStay(tt.start, tt.end, testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
