package reservation

import "time"

// Overlaps は候補期間が既存の予約期間と衝突するかを返す
//
// 境界を含む閉区間で、候補の開始日または終了日のどちらかが既存期間に
// 含まれる場合のみ衝突とみなす。候補が既存期間を端点に触れずに包含する
// ケース（既存 [2日,2日]、候補 [1日,3日]）は衝突と判定されない。
// Repository.IsAvailable の実装はこの判定と同じ条件を使うこと。
func Overlaps(candidateStart, candidateEnd, storedStart, storedEnd time.Time) bool {
	return within(candidateStart, storedStart, storedEnd) ||
		within(candidateEnd, storedStart, storedEnd)
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// sameDay は2つの時刻がUTCで同じ暦日かを返す
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
