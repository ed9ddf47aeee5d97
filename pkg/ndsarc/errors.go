package ndsarc

import "errors"

var (
	// ErrCorruptArchive はイメージやコンテナの構造が壊れている場合のエラー
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrNotFound はパスが存在しない場合のエラー
	ErrNotFound = errors.New("path not found")

	// ErrOutOfBounds はオフセットや長さが対象の範囲を超えている場合のエラー
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrRepack は再構築できない変更が含まれている場合のエラー
	ErrRepack = errors.New("repack failed")
)
