package compress

import (
	"encoding/binary"
	"slices"
)

const (
	blzFooterSize = 8
	blzMaxHeader  = 11
	blzMinDisp    = 3
	blzMaxDisp    = 0x1002
	blzMaxLen     = 0x12
	// 展開後のサイズがこれを超えるフッターは誤検出とみなす
	blzMaxOutput = 0x4000000
)

// blzFooter はBLZ形式の末尾8バイトです
type blzFooter struct {
	encLen    int // 圧縮領域の長さ (フッターを含む)
	headerLen int // フッターとパディングの長さ
	total     int // 展開後の全体サイズ
}

func parseBLZFooter(src []byte) (blzFooter, bool) {
	if len(src) < blzFooterSize {
		return blzFooter{}, false
	}
	tail := src[len(src)-blzFooterSize:]
	a := binary.LittleEndian.Uint32(tail)
	inc := binary.LittleEndian.Uint32(tail[4:])
	ft := blzFooter{
		encLen:    int(a & 0xFFFFFF),
		headerLen: int(a >> 24),
		total:     int(uint32(len(src)) + inc),
	}
	if ft.headerLen < blzFooterSize || ft.headerLen > blzMaxHeader {
		return blzFooter{}, false
	}
	if ft.encLen < ft.headerLen || ft.encLen > len(src) {
		return blzFooter{}, false
	}
	if ft.total < len(src)-ft.encLen || ft.total > blzMaxOutput {
		return blzFooter{}, false
	}
	for _, b := range src[len(src)-ft.headerLen : len(src)-blzFooterSize] {
		if b != 0xFF {
			return blzFooter{}, false
		}
	}
	return ft, true
}

// DetectFooter はデータ末尾にBLZのフッターとして妥当な値があるかを返します
func DetectFooter(data []byte) bool {
	_, ok := parseBLZFooter(data)
	return ok
}

// decompressBLZ はBLZ形式のデータを解凍します。
// 圧縮領域は末尾から先頭へ向かって読み、先頭の非圧縮部分はそのまま残ります。
func decompressBLZ(src []byte) ([]byte, error) {
	ft, ok := parseBLZFooter(src)
	if !ok {
		return nil, corrupt(FormatBLZ, "invalid footer")
	}
	prefix := len(src) - ft.encLen
	stream := slices.Clone(src[prefix : len(src)-ft.headerLen])
	slices.Reverse(stream)

	need := ft.total - prefix
	out := make([]byte, 0, need)
	p := 0
	for len(out) < need {
		if p >= len(stream) {
			return nil, corrupt(FormatBLZ, "unexpected end of stream")
		}
		flags := stream[p]
		p++
		for bit := 0; bit < 8 && len(out) < need; bit++ {
			if flags&(0x80>>bit) == 0 {
				if p >= len(stream) {
					return nil, corrupt(FormatBLZ, "unexpected end of stream")
				}
				out = append(out, stream[p])
				p++
				continue
			}
			if p+2 > len(stream) {
				return nil, corrupt(FormatBLZ, "unexpected end of stream")
			}
			v := int(stream[p])<<8 | int(stream[p+1])
			p += 2
			var err error
			if out, err = copyBack(out, v>>12+3, v&0xFFF+3, need, FormatBLZ); err != nil {
				return nil, err
			}
		}
	}
	if p != len(stream) {
		return nil, corrupt(FormatBLZ, "trailing bytes in stream")
	}
	slices.Reverse(out)
	return append(slices.Clone(src[:prefix]), out...), nil
}

func compressBLZ(data []byte) ([]byte, error) {
	rev := slices.Clone(data)
	slices.Reverse(rev)

	var stream []byte
	m := newMatcher(rev, blzMinDisp, blzMaxDisp, blzMaxLen)
	for pos := 0; pos < len(rev); {
		flagPos := len(stream)
		stream = append(stream, 0)
		for bit := 0; bit < 8 && pos < len(rev); bit++ {
			n, disp := m.find(pos)
			if n == 0 {
				stream = append(stream, rev[pos])
				m.insert(pos)
				pos++
				continue
			}
			stream[flagPos] |= 0x80 >> bit
			v := (n-3)<<12 | (disp - 3)
			stream = append(stream, byte(v>>8), byte(v))
			m.advance(pos, n)
			pos += n
		}
	}
	slices.Reverse(stream)

	pad := (4 - len(stream)%4) % 4
	headerLen := blzFooterSize + pad
	encLen := len(stream) + headerLen
	if encLen > 0xFFFFFF {
		return nil, corrupt(FormatBLZ, "input too large")
	}
	out := stream
	for i := 0; i < pad; i++ {
		out = append(out, 0xFF)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(encLen)|uint32(headerLen)<<24)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)-encLen))
	return out, nil
}
