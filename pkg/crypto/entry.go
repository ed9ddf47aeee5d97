package crypto

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
)

const (
	gen4Control  = 0xFFFE
	gen4Newline  = 0xE000
	gen4Return   = 0x25BC
	gen4FormFeed = 0x25BD

	gen5Control = 0xF000
	gen5Newline = 0xFFFE
)

// DecodeEntry は暗号化された1エントリを復号して文字列にします
func DecodeEntry(raw []byte, index int, state CipherState) (string, error) {
	if err := state.validate(); err != nil {
		return "", err
	}
	if len(raw)%2 != 0 {
		return "", fmt.Errorf("%w: entry %d has odd length %d", ErrInvalidTextFile, index, len(raw))
	}
	units := state.xorUnits(bytesToUnits(raw), index)
	return decodeUnits(units, state.Variant), nil
}

// EncodeEntry は文字列を暗号化された1エントリに変換します。
// packed が true の場合は 0xF100 に続く9ビット形式で書き出します。
func EncodeEntry(text string, index int, state CipherState, packed bool) ([]byte, error) {
	if err := state.validate(); err != nil {
		return nil, err
	}
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	var units []uint16
	if packed {
		syms := make([]uint16, 0, len(tokens))
		for _, tok := range tokens {
			sym, err := packedSymbol(tok, state.Variant)
			if err != nil {
				return nil, err
			}
			syms = append(syms, sym)
		}
		units = append([]uint16{packedMarker}, packSymbols(syms)...)
	} else {
		for _, tok := range tokens {
			if units, err = appendToken(units, tok, state.Variant); err != nil {
				return nil, err
			}
		}
		if len(units) > 0 && units[0] == packedMarker {
			return nil, fmt.Errorf("%w: entry cannot start with \\x%04X", ErrUnencodable, packedMarker)
		}
	}
	units = append(units, unitEnd)
	return unitsToBytes(state.xorUnits(units, index)), nil
}

// IsPacked はエントリが9ビット形式で格納されているかを返します
func IsPacked(raw []byte, index int, state CipherState) bool {
	if len(raw) < 2 {
		return false
	}
	first := binary.LittleEndian.Uint16(raw) ^ state.entryKey(index)
	return first == packedMarker
}

func decodeUnits(units []uint16, v Variant) string {
	if len(units) > 0 && units[0] == packedMarker {
		return decodePacked(units[1:], v)
	}
	control := uint16(gen4Control)
	if v == VariantGen5 {
		control = gen5Control
	}
	var sb strings.Builder
	for j := 0; j < len(units); j++ {
		u := units[j]
		switch {
		case u == unitEnd:
			return sb.String()
		case u == control:
			if j+2 >= len(units) || j+2+int(units[j+2]) >= len(units) {
				formatRaw(&sb, u)
				continue
			}
			count := int(units[j+2])
			formatControl(&sb, units[j+1], units[j+3:j+3+count])
			j += 2 + count
		case v == VariantGen5 && utf16.IsSurrogate(rune(u)):
			if u < 0xDC00 && j+1 < len(units) {
				if r := utf16.DecodeRune(rune(u), rune(units[j+1])); r != unicode.ReplacementChar {
					sb.WriteRune(r)
					j++
					continue
				}
			}
			formatRaw(&sb, u)
		default:
			writeUnit(&sb, u, v)
		}
	}
	return sb.String()
}

func decodePacked(units []uint16, v Variant) string {
	var sb strings.Builder
	pr := newPackedReader(units)
	for {
		sym, ok := pr.Next()
		if !ok {
			return sb.String()
		}
		writeUnit(&sb, sym, v)
	}
}

// writeUnit は1ユニットを世代の文字テーブルで文字にします
func writeUnit(sb *strings.Builder, u uint16, v Variant) {
	if v == VariantGen4 {
		switch u {
		case gen4Newline:
			sb.WriteByte('\n')
		case gen4Return:
			sb.WriteByte('\r')
		case gen4FormFeed:
			sb.WriteByte('\f')
		default:
			if s, ok := gen4Rune(u); ok {
				sb.WriteString(s)
			} else {
				formatRaw(sb, u)
			}
		}
		return
	}
	if s, ok := gen5Substitutions[u]; ok {
		sb.WriteString(s)
		return
	}
	switch {
	case u == gen5Newline:
		sb.WriteByte('\n')
	case u == '\\':
		sb.WriteString(`\\`)
	case u == '[':
		sb.WriteString(`\[`)
	case u < 0x20, u >= 0xF000:
		formatRaw(sb, u)
	default:
		sb.WriteRune(rune(u))
	}
}

// appendToken は通常形式のトークンをユニット列に追加します
func appendToken(units []uint16, tok token, v Variant) ([]uint16, error) {
	switch tok.kind {
	case tokenRaw:
		if tok.unit == unitEnd {
			return nil, fmt.Errorf("%w: \\x%04X terminates the entry", ErrUnencodable, tok.unit)
		}
		return append(units, tok.unit), nil
	case tokenControl:
		prefix := uint16(gen4Control)
		if v == VariantGen5 {
			prefix = gen5Control
		}
		units = append(units, prefix, tok.ctrl, uint16(len(tok.params)))
		return append(units, tok.params...), nil
	}
	r := tok.r
	if v == VariantGen4 {
		switch r {
		case '\n':
			return append(units, gen4Newline), nil
		case '\r':
			return append(units, gen4Return), nil
		case '\f':
			return append(units, gen4FormFeed), nil
		}
		code, ok := gen4Reverse[r]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no gen4 code", ErrUnencodable, r)
		}
		return append(units, code), nil
	}
	switch {
	case r == '\n':
		return append(units, gen5Newline), nil
	case r < 0x20, r >= 0xF000 && r <= 0xFFFF, utf16.IsSurrogate(r):
		return nil, fmt.Errorf("%w: %U must be written as an escape", ErrUnencodable, r)
	case r > 0xFFFF:
		hi, lo := utf16.EncodeRune(r)
		return append(units, uint16(hi), uint16(lo)), nil
	}
	if _, ok := gen5Substitutions[uint16(r)]; ok {
		return nil, fmt.Errorf("%w: %U is reserved", ErrUnencodable, r)
	}
	return append(units, uint16(r)), nil
}

// packedSymbol は9ビット形式で表せるシンボルを返します
func packedSymbol(tok token, v Variant) (uint16, error) {
	var sym uint16
	switch tok.kind {
	case tokenRaw:
		sym = tok.unit
	case tokenControl:
		return 0, fmt.Errorf("%w: control codes cannot be packed", ErrUnencodable)
	default:
		if v == VariantGen4 {
			code, ok := gen4Reverse[tok.r]
			if !ok {
				return 0, fmt.Errorf("%w: %q has no gen4 code", ErrUnencodable, tok.r)
			}
			sym = code
		} else {
			if tok.r < 0x20 || tok.r >= packedTerminator {
				return 0, fmt.Errorf("%w: %q cannot be packed", ErrUnencodable, tok.r)
			}
			sym = uint16(tok.r)
		}
	}
	if sym >= packedTerminator {
		return 0, fmt.Errorf("%w: \\x%04X does not fit in 9 bits", ErrUnencodable, sym)
	}
	return sym, nil
}

func bytesToUnits(b []byte) []uint16 {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return units
}

func unitsToBytes(units []uint16) []byte {
	b := make([]byte, 0, len(units)*2)
	for _, u := range units {
		b = binary.LittleEndian.AppendUint16(b, u)
	}
	return b
}
