package crypto

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"unicode/utf16"
)

// DeriveMultiplier は第5世代テキストファイルの参照エントリから乗数Mを求めます。
// 参照エントリの先頭ユニットは ((entry+3)*M) mod 2^16 とXORされているため、
// 期待する先頭文字とのXORから M を逆算し、エントリ全体が expected に一致するか検証します。
func DeriveMultiplier(file []byte, entry int, expected string) (uint16, error) {
	tf, err := parseGen5File(file)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCipherDerivation, err)
	}
	if entry < 0 || entry >= len(tf.Entries) || len(tf.Entries[entry]) < 2 {
		return 0, fmt.Errorf("%w: reference entry %d not present", ErrCipherDerivation, entry)
	}
	if expected == "" {
		return 0, fmt.Errorf("%w: empty reference string", ErrCipherDerivation)
	}
	first := utf16.Encode([]rune(expected))[0]
	x := binary.LittleEndian.Uint16(tf.Entries[entry]) ^ first

	d := uint16(entry + gen5KeyOffset)
	shift := bits.TrailingZeros16(d)
	if x&(1<<shift-1) != 0 {
		return 0, fmt.Errorf("%w: first unit 0x%04X is not a multiple of %d", ErrCipherDerivation, x, d)
	}
	m := (x >> shift) * inverseOdd(d>>shift)
	m &= 1<<(16-shift) - 1

	got, err := DecodeEntry(tf.Entries[entry], entry, NewGen5State(m))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCipherDerivation, err)
	}
	if got != expected {
		return 0, fmt.Errorf("%w: reference entry decodes to %q, want %q", ErrCipherDerivation, got, expected)
	}
	return m, nil
}

// inverseOdd は奇数 d の mod 2^16 での逆数を返します
func inverseOdd(d uint16) uint16 {
	inv := d
	for i := 0; i < 4; i++ {
		inv *= 2 - d*inv
	}
	return inv
}
