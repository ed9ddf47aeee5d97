package crypto

import "errors"

var (
	// ErrCipherDerivation は第5世代の乗数を参照エントリから求められない場合のエラー
	ErrCipherDerivation = errors.New("cipher derivation failed")

	// ErrUnencodable は文字列が対象世代の文字セットで表現できない場合のエラー
	ErrUnencodable = errors.New("text not encodable")

	// ErrInvalidTextFile はテキストファイルの構造が壊れている場合のエラー
	ErrInvalidTextFile = errors.New("invalid text file")
)
