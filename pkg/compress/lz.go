package compress

const (
	lzWindow   = 0x1000
	lz10MaxLen = 0x12
	lz11MaxLen = 0x10110
)

// decompressLZ10 はLZ10形式のデータを解凍します。
// フラグバイトはMSBから順に読み、1なら2バイトの後方参照、0ならリテラルです。
func decompressLZ10(src []byte) ([]byte, error) {
	size, p, err := readHeader(src, FormatLZ10, true)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, size)
	for len(out) < size {
		if p >= len(src) {
			return nil, corrupt(FormatLZ10, "unexpected end of stream")
		}
		flags := src[p]
		p++
		for bit := 0; bit < 8 && len(out) < size; bit++ {
			if flags&(0x80>>bit) == 0 {
				if p >= len(src) {
					return nil, corrupt(FormatLZ10, "unexpected end of stream")
				}
				out = append(out, src[p])
				p++
				continue
			}
			if p+2 > len(src) {
				return nil, corrupt(FormatLZ10, "unexpected end of stream")
			}
			b0, b1 := src[p], src[p+1]
			p += 2
			n := int(b0>>4) + 3
			disp := (int(b0&0x0F)<<8 | int(b1)) + 1
			if out, err = copyBack(out, n, disp, size, FormatLZ10); err != nil {
				return nil, err
			}
		}
	}
	if err := checkTrailing(src, p, FormatLZ10); err != nil {
		return nil, err
	}
	return out, nil
}

// decompressLZ11 はLZ11形式のデータを解凍します。
// 参照の先頭ニブルが0なら3バイト、1なら4バイト、それ以外は2バイトの参照です。
func decompressLZ11(src []byte) ([]byte, error) {
	size, p, err := readHeader(src, FormatLZ11, true)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, size)
	for len(out) < size {
		if p >= len(src) {
			return nil, corrupt(FormatLZ11, "unexpected end of stream")
		}
		flags := src[p]
		p++
		for bit := 0; bit < 8 && len(out) < size; bit++ {
			if flags&(0x80>>bit) == 0 {
				if p >= len(src) {
					return nil, corrupt(FormatLZ11, "unexpected end of stream")
				}
				out = append(out, src[p])
				p++
				continue
			}
			if p >= len(src) {
				return nil, corrupt(FormatLZ11, "unexpected end of stream")
			}
			var n, disp int
			b0 := src[p]
			switch b0 >> 4 {
			case 0:
				if p+3 > len(src) {
					return nil, corrupt(FormatLZ11, "unexpected end of stream")
				}
				b1, b2 := src[p+1], src[p+2]
				p += 3
				n = (int(b0&0x0F)<<4 | int(b1>>4)) + 0x11
				disp = (int(b1&0x0F)<<8 | int(b2)) + 1
			case 1:
				if p+4 > len(src) {
					return nil, corrupt(FormatLZ11, "unexpected end of stream")
				}
				b1, b2, b3 := src[p+1], src[p+2], src[p+3]
				p += 4
				n = (int(b0&0x0F)<<12 | int(b1)<<4 | int(b2>>4)) + 0x111
				disp = (int(b2&0x0F)<<8 | int(b3)) + 1
			default:
				if p+2 > len(src) {
					return nil, corrupt(FormatLZ11, "unexpected end of stream")
				}
				b1 := src[p+1]
				p += 2
				n = int(b0>>4) + 1
				disp = (int(b0&0x0F)<<8 | int(b1)) + 1
			}
			if out, err = copyBack(out, n, disp, size, FormatLZ11); err != nil {
				return nil, err
			}
		}
	}
	if err := checkTrailing(src, p, FormatLZ11); err != nil {
		return nil, err
	}
	return out, nil
}

// copyBack は disp バイト前から n バイトを複製します。重なりのある複製も許可します
func copyBack(out []byte, n, disp, size int, f Format) ([]byte, error) {
	if disp > len(out) {
		return nil, corrupt(f, "back reference before start of output")
	}
	if len(out)+n > size {
		return nil, corrupt(f, "back reference overruns declared size")
	}
	start := len(out) - disp
	for i := 0; i < n; i++ {
		out = append(out, out[start+i])
	}
	return out, nil
}

func compressLZ10(data []byte) []byte {
	out := writeHeader(tagLZ10, len(data))
	m := newMatcher(data, 1, lzWindow, lz10MaxLen)
	for pos := 0; pos < len(data); {
		flagPos := len(out)
		out = append(out, 0)
		for bit := 0; bit < 8 && pos < len(data); bit++ {
			n, disp := m.find(pos)
			if n == 0 {
				out = append(out, data[pos])
				m.insert(pos)
				pos++
				continue
			}
			out[flagPos] |= 0x80 >> bit
			d := disp - 1
			out = append(out, byte((n-3)<<4|d>>8), byte(d))
			m.advance(pos, n)
			pos += n
		}
	}
	return padTo4(out)
}

func compressLZ11(data []byte) []byte {
	out := writeHeader(tagLZ11, len(data))
	m := newMatcher(data, 1, lzWindow, lz11MaxLen)
	for pos := 0; pos < len(data); {
		flagPos := len(out)
		out = append(out, 0)
		for bit := 0; bit < 8 && pos < len(data); bit++ {
			n, disp := m.find(pos)
			if n == 0 {
				out = append(out, data[pos])
				m.insert(pos)
				pos++
				continue
			}
			out[flagPos] |= 0x80 >> bit
			d := disp - 1
			switch {
			case n <= 0x10:
				out = append(out, byte((n-1)<<4|d>>8), byte(d))
			case n <= 0x110:
				x := n - 0x11
				out = append(out, byte(x>>4), byte((x&0x0F)<<4|d>>8), byte(d))
			default:
				x := n - 0x111
				out = append(out, byte(0x10|x>>12), byte(x>>4), byte((x&0x0F)<<4|d>>8), byte(d))
			}
			m.advance(pos, n)
			pos += n
		}
	}
	return padTo4(out)
}
