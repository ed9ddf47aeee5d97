// Package crypto はポケモン第4世代・第5世代のテキストファイルの暗号を扱うパッケージです。
//
// 2つの方式は世代ごとに選択され、混在しません:
//   - VariantGen4: エントリごとに ((i+1)*0x91BD3) mod 2^16 を鍵とし、1ユニットごとに 0x493D を加算
//   - VariantGen5: エントリごとに ((i+3)*M) mod 2^16 を鍵とし、1ユニットごとに3ビット左回転
//
// どちらもエントリ先頭が 0xF100 の場合、残りは9ビット単位で詰められた文字列になります。
// デコード結果は次の記法で表され、EncodeEntry で同じバイト列に戻せます:
//
//	\n \r \f                改行・送り
//	[VAR 0100(0000,0001)]   制御コード (種別とパラメータ)
//	\xFFFF                  文字テーブルに無いコード
//	\\ \[                   第5世代のバックスラッシュと角括弧
package crypto

import "fmt"

// Variant は暗号方式を表します
type Variant int

const (
	VariantGen4 Variant = iota + 1
	VariantGen5
)

const (
	gen4KeyMultiplier = 0x91BD3
	gen4KeyStep       = 0x493D
	gen4TableKey      = 0x2FD

	gen5KeyOffset = 3

	unitEnd = 0xFFFF
)

// String は方式名を返します
func (v Variant) String() string {
	switch v {
	case VariantGen4:
		return "gen4"
	case VariantGen5:
		return "gen5"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// VariantForGeneration は世代番号から方式を返します
func VariantForGeneration(gen int) (Variant, error) {
	switch gen {
	case 4:
		return VariantGen4, nil
	case 5:
		return VariantGen5, nil
	}
	return 0, fmt.Errorf("no text cipher for generation %d", gen)
}

// CipherState はテキストコンテナ1つ分の暗号パラメータです
type CipherState struct {
	Variant Variant
	// Multiplier は第5世代の乗数Mです。第4世代では使いません
	Multiplier uint16
}

// NewGen4State は第4世代の CipherState を返します
func NewGen4State() CipherState {
	return CipherState{Variant: VariantGen4}
}

// NewGen5State は乗数Mを持つ第5世代の CipherState を返します
func NewGen5State(multiplier uint16) CipherState {
	return CipherState{Variant: VariantGen5, Multiplier: multiplier}
}

// entryKey はエントリ番号から初期鍵を求めます
func (s CipherState) entryKey(index int) uint16 {
	if s.Variant == VariantGen5 {
		return uint16((index + gen5KeyOffset) * int(s.Multiplier))
	}
	return uint16((index + 1) * gen4KeyMultiplier)
}

// next は1ユニット処理した後の鍵を返します
func (s CipherState) next(key uint16) uint16 {
	if s.Variant == VariantGen5 {
		return key<<3 | key>>13
	}
	return key + gen4KeyStep
}

// xorUnits はユニット列に鍵ストリームをXORします。暗号化と復号は同じ操作です
func (s CipherState) xorUnits(units []uint16, index int) []uint16 {
	out := make([]uint16, len(units))
	key := s.entryKey(index)
	for i, u := range units {
		out[i] = u ^ key
		key = s.next(key)
	}
	return out
}

func (s CipherState) validate() error {
	if s.Variant != VariantGen4 && s.Variant != VariantGen5 {
		return fmt.Errorf("unknown cipher variant %v", s.Variant)
	}
	return nil
}
