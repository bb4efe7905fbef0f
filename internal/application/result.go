package application

// Result は取得系ユースケースの結果を表す
// 見つからないことはエラーではなく Found=false で返す
type Result[T any] struct {
	Value T
	Found bool
}

func Found[T any](v T) Result[T] {
	return Result[T]{Value: v, Found: true}
}

func NotFound[T any]() Result[T] {
	return Result[T]{}
}
