package reservation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		guest       string
		idCard      string
		start       time.Time
		end         time.Time
		errExpected error
	}{
		{name: "正常な予約作成", guest: "Valdeci Rodrigues", idCard: "123456AAA", start: day(5), end: day(7)},
		{name: "開始日と終了日が同日", guest: "Valdeci Rodrigues", idCard: "123456AAA", start: day(5), end: day(5)},
		{name: "滞在がちょうど3日", guest: "Valdeci Rodrigues", idCard: "1", start: day(5), end: day(8)},
		{name: "開始日がちょうど30日後", guest: "abc", idCard: "123456AAA", start: testNow.Add(BookingHorizon), end: testNow.Add(BookingHorizon)},
		{name: "氏名未指定", guest: "", idCard: "123456AAA", start: day(5), end: day(6), errExpected: ErrNameRequired},
		{name: "氏名が短すぎる", guest: "ab", idCard: "123456AAA", start: day(5), end: day(6), errExpected: ErrNameLengthOutOfRange},
		{name: "氏名が長すぎる", guest: strings.Repeat("a", 101), idCard: "123456AAA", start: day(5), end: day(6), errExpected: ErrNameLengthOutOfRange},
		{name: "身分証番号未指定", guest: "Valdeci", idCard: "", start: day(5), end: day(6), errExpected: ErrIDCardRequired},
		{name: "身分証番号が長すぎる", guest: "Valdeci", idCard: strings.Repeat("9", 21), start: day(5), end: day(6), errExpected: ErrIDCardLengthOutOfRange},
		{name: "開始日未指定", guest: "Valdeci", idCard: "123", start: time.Time{}, end: day(6), errExpected: ErrDateRequired},
		{name: "終了日未指定", guest: "Valdeci", idCard: "123", start: day(5), end: time.Time{}, errExpected: ErrDateRequired},
		{name: "終了日が開始日より前", guest: "Valdeci", idCard: "123", start: day(6), end: day(5), errExpected: ErrEndBeforeStart},
		{name: "滞在が3日を超える", guest: "Valdeci", idCard: "123", start: day(5), end: day(8).Add(time.Second), errExpected: ErrStayTooLong},
		{name: "30日より先の予約", guest: "Valdeci", idCard: "123", start: day(31), end: day(32), errExpected: ErrTooFarInAdvance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.guest, tt.idCard, tt.start, tt.end, testNow)
			if tt.errExpected != nil {
				assert.ErrorIs(t, err, tt.errExpected)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.guest, r.Name)
			assert.Equal(t, tt.idCard, r.IDCard)
			assert.Equal(t, tt.start, r.StartDate)
			assert.Equal(t, tt.end, r.EndDate)
			assert.Equal(t, testNow, r.BookingDate)
			assert.Empty(t, r.ID)
		})
	}
}

func TestNew_PastStartIsNotCheckedOnConstruction(t *testing.T) {
	// 過去日の判定はガード側の責務
	r, err := New("Valdeci", "123", day(-1), day(0), testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, r.CanCreate(true, testNow), ErrPastStart)
}

func TestReservation_Update(t *testing.T) {
	r := createTestReservation(t)
	r.ID = "res-1"
	bookingDate := r.BookingDate

	err := r.Update("New Name", "999", day(10), day(12), testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "res-1", r.ID)
	assert.Equal(t, bookingDate, r.BookingDate)
	assert.Equal(t, "New Name", r.Name)
	assert.Equal(t, "999", r.IDCard)
	assert.Equal(t, day(10), r.StartDate)
	assert.Equal(t, day(12), r.EndDate)
}

func TestReservation_Update_Invalid(t *testing.T) {
	r := createTestReservation(t)
	before := *r

	err := r.Update("New Name", "999", day(10), day(15), testNow)
	assert.ErrorIs(t, err, ErrStayTooLong)
	assert.Equal(t, before, *r, "検証エラー時は変更しない")
}

func TestReservation_CanCreate(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		available bool
		wantErr   error
	}{
		{"空きあり・未来日", day(5), true, nil},
		{"空きなし", day(5), false, ErrDateRangeUnavailable},
		{"開始日が現在時刻と同じ", testNow, true, ErrPastStart},
		{"開始日が過去", day(-1), true, ErrPastStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{StartDate: tt.start, EndDate: tt.start.Add(24 * time.Hour)}
			err := r.CanCreate(tt.available, testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReservation_CanUpdate(t *testing.T) {
	tests := []struct {
		name      string
		current   [2]time.Time
		proposed  [2]time.Time
		available bool
		wantErr   error
	}{
		{"日付変更なしなら空き状況を見ない", [2]time.Time{day(5), day(6)}, [2]time.Time{day(5), day(6)}, false, nil},
		{"時刻だけの違いは変更とみなさない", [2]time.Time{day(5), day(6)}, [2]time.Time{day(5).Add(14 * time.Hour), day(6).Add(10 * time.Hour)}, false, nil},
		{"開始済みでも日付変更なしなら許可", [2]time.Time{day(-1), day(1)}, [2]time.Time{day(-1), day(1)}, true, nil},
		{"開始日の変更で空きあり", [2]time.Time{day(5), day(6)}, [2]time.Time{day(7), day(8)}, true, nil},
		{"終了日のみの変更で空きなし", [2]time.Time{day(5), day(6)}, [2]time.Time{day(5), day(7)}, false, ErrDateRangeUnavailable},
		{"開始済み予約の日付変更", [2]time.Time{day(-1), day(1)}, [2]time.Time{day(-1), day(2)}, true, ErrPastStart},
		{"変更後の開始日が過去", [2]time.Time{day(5), day(6)}, [2]time.Time{day(-2), day(-1)}, true, ErrPastStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{ID: "res-1", StartDate: tt.current[0], EndDate: tt.current[1]}
			err := r.CanUpdate(tt.proposed[0], tt.proposed[1], tt.available, testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReservation_CanCancel(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		wantErr error
	}{
		{"未来の予約はキャンセルできる", day(1), nil},
		{"現在時刻に開始する予約はキャンセルできない", testNow, ErrPastStart},
		{"開始済みの予約はキャンセルできない", day(-1), ErrPastStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reservation{StartDate: tt.start}
			err := r.CanCancel(testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReservation_IsUpcoming(t *testing.T) {
	r := &Reservation{StartDate: day(1)}
	assert.True(t, r.IsUpcoming(testNow))
	r.StartDate = day(-1)
	assert.False(t, r.IsUpcoming(testNow))
}

func TestKindOf(t *testing.T) {
	_, err := New("ab", "1", day(1), day(2), testNow)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindNameLengthOutOfRange, kind)

	_, ok = KindOf(ErrDateRangeUnavailable)
	assert.False(t, ok)
}

func createTestReservation(t *testing.T) *Reservation {
	r, err := New("Valdeci Rodrigues", "123456AAA", day(5), day(7), testNow)
	require.NoError(t, err)
	return r
}
