package crypto

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenRune tokenKind = iota
	tokenRaw
	tokenControl
)

// token はデコード結果の記法を分解した単位です
type token struct {
	kind   tokenKind
	r      rune
	unit   uint16
	ctrl   uint16
	params []uint16
}

// formatControl は制御コードを [VAR 0100(0001,0002)] の形式で書き出します
func formatControl(sb *strings.Builder, ctrl uint16, params []uint16) {
	fmt.Fprintf(sb, "[VAR %04X", ctrl)
	if len(params) > 0 {
		sb.WriteByte('(')
		for i, p := range params {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(sb, "%04X", p)
		}
		sb.WriteByte(')')
	}
	sb.WriteByte(']')
}

func formatRaw(sb *strings.Builder, unit uint16) {
	fmt.Fprintf(sb, `\x%04X`, unit)
}

// tokenize は記法を含む文字列をトークン列に分解します
func tokenize(text string) ([]token, error) {
	var tokens []token
	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			if i+1 >= len(rs) {
				return nil, fmt.Errorf("%w: dangling backslash", ErrUnencodable)
			}
			switch rs[i+1] {
			case '\\', '[':
				tokens = append(tokens, token{kind: tokenRune, r: rs[i+1]})
				i++
			case 'x':
				if i+6 > len(rs) {
					return nil, fmt.Errorf("%w: short \\x escape", ErrUnencodable)
				}
				v, err := parseHex16(string(rs[i+2 : i+6]))
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, token{kind: tokenRaw, unit: v})
				i += 5
			default:
				return nil, fmt.Errorf("%w: unknown escape \\%c", ErrUnencodable, rs[i+1])
			}
		case '[':
			end := i + 1
			for end < len(rs) && rs[end] != ']' {
				end++
			}
			if end >= len(rs) {
				return nil, fmt.Errorf("%w: unterminated control", ErrUnencodable)
			}
			tok, err := parseControl(string(rs[i+1 : end]))
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = end
		default:
			tokens = append(tokens, token{kind: tokenRune, r: rs[i]})
		}
	}
	return tokens, nil
}

// parseControl は "VAR 0100(0001,0002)" を解析します
func parseControl(body string) (token, error) {
	rest, ok := strings.CutPrefix(body, "VAR ")
	if !ok {
		return token{}, fmt.Errorf("%w: unknown markup [%s]", ErrUnencodable, body)
	}
	var params []uint16
	if open := strings.IndexByte(rest, '('); open >= 0 {
		if !strings.HasSuffix(rest, ")") {
			return token{}, fmt.Errorf("%w: bad control parameters [%s]", ErrUnencodable, body)
		}
		for _, p := range strings.Split(rest[open+1:len(rest)-1], ",") {
			v, err := parseHex16(p)
			if err != nil {
				return token{}, err
			}
			params = append(params, v)
		}
		rest = rest[:open]
	}
	ctrl, err := parseHex16(rest)
	if err != nil {
		return token{}, err
	}
	return token{kind: tokenControl, ctrl: ctrl, params: params}, nil
}

func parseHex16(s string) (uint16, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: expected 4 hex digits, got %q", ErrUnencodable, s)
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnencodable, err)
	}
	return uint16(v), nil
}
