package gamedb

import "errors"

var (
	// ErrUnknownGame はゲームコードが登録されていない場合のエラー
	ErrUnknownGame = errors.New("unknown game code")

	// ErrInvalidConfig は設定データの内容が不正な場合のエラー
	ErrInvalidConfig = errors.New("invalid game configuration")
)
