package model

// BaseEstimator は推定器に埋め込んで学習状態を共有するためのトラッカー。
// Fit が成功した時点で SetFitted を呼び、Predict 側は IsFitted で
// 未学習のまま呼ばれていないか検査する。
type BaseEstimator struct {
	fitted bool
}

// IsFitted は Fit が完了しているかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.fitted
}

// SetFitted は推定器を学習済みとして記録する
func (e *BaseEstimator) SetFitted() {
	e.fitted = true
}

// Reset は学習状態を破棄し、再学習前の状態へ戻す
func (e *BaseEstimator) Reset() {
	e.fitted = false
}
