package app

import "errors"

var (
	// ErrReadImage はイメージの読み込みに失敗した場合のエラー
	ErrReadImage = errors.New("failed to read image")

	// ErrWriteImage はイメージの保存に失敗した場合のエラー
	ErrWriteImage = errors.New("failed to write image")

	// ErrLoadGames はゲーム設定の読み込みに失敗した場合のエラー
	ErrLoadGames = errors.New("failed to load game configuration")

	// ErrUnknownEncoding は対応していないエンコーディングが指定された場合のエラー
	ErrUnknownEncoding = errors.New("unknown encoding")

	// ErrInvalidData は書き込むデータを指定のエンコーディングで変換できない場合のエラー
	ErrInvalidData = errors.New("invalid data")
)
