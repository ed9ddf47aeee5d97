package decoder

import "errors"

var (
	// ErrShortRecord はレコードが形式に必要な長さに満たない場合のエラー
	ErrShortRecord = errors.New("record too short")

	// ErrUnknownRole は役割名が定義されていない場合のエラー
	ErrUnknownRole = errors.New("unknown decoder role")
)
