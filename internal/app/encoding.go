package app

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encodings は EncodeData が受け付けるエンコーディングです
var Encodings = []string{"hex", "utf8", "utf16le", "ascii", "latin1", "shiftjis"}

// EncodeData はコマンドラインの文字列をエンコーディングに従ってバイト列に変換します
func EncodeData(s, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "", "hex":
		return ParseHex(s)
	case "utf8", "utf-8":
		if !utf8.ValidString(s) {
			return nil, fmt.Errorf("%w: not valid utf-8", ErrInvalidData)
		}
		return []byte(s), nil
	case "utf16le", "utf-16le":
		b, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		return b, nil
	case "ascii":
		if i := strings.IndexFunc(s, func(r rune) bool { return r >= utf8.RuneSelf }); i >= 0 {
			return nil, fmt.Errorf("%w: non-ascii character at %d", ErrInvalidData, i)
		}
		return []byte(s), nil
	case "latin1", "iso-8859-1":
		return encodeWith(charmap.ISO8859_1.NewEncoder(), s)
	case "shiftjis", "sjis", "shift_jis":
		return encodeWith(japanese.ShiftJIS.NewEncoder(), s)
	}
	return nil, fmt.Errorf("%w: %s (want one of %s)", ErrUnknownEncoding, encoding, strings.Join(Encodings, ", "))
}

// encodeWith は t で変換します。表せない文字があればエラーを返します
func encodeWith(t transform.Transformer, s string) ([]byte, error) {
	b, _, err := transform.String(t, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return []byte(b), nil
}

// ParseHex は "0A 1B", "0x0a1b", "0a:1b" のような16進文字列をバイト列に変換します
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	s = strings.Map(func(r rune) rune {
		if slices.Contains([]rune{' ', '\t', ':', '-', ','}, r) {
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return b, nil
}
