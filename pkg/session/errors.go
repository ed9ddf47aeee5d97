package session

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed は Close 後のセッションを操作した場合のエラー
	ErrClosed = errors.New("session closed")

	// ErrNoGame はゲーム設定の無いイメージでテキストや役割を使おうとした場合のエラー
	ErrNoGame = errors.New("no game configuration")

	// ErrNoTable は名前付きのテキストテーブルが見つからない場合のエラー
	ErrNoTable = errors.New("text table not found")
)

// PathError はパスに対する操作のエラーです
type PathError struct {
	Op   string // 実行していた操作
	Path string // 対象のパス
	// Offset は問題のあったバイト位置です。位置を持たない場合は -1 です
	Offset int
	Err    error // 元のエラー
}

// Error はエラーメッセージを返します
func (e *PathError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s %s at 0x%X: %v", e.Op, e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap は元のエラーを返します
func (e *PathError) Unwrap() error {
	return e.Err
}

func pathError(op, path string, err error) *PathError {
	return &PathError{Op: op, Path: path, Offset: -1, Err: err}
}
