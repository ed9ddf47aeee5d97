package compress

const (
	rleMaxRun     = 0x82
	rleMaxLiteral = 0x80
)

// decompressRLE はRLE形式のデータを解凍します。
// フラグの最上位ビットが立っていれば (flag&0x7F)+3 回の繰り返し、
// そうでなければ (flag&0x7F)+1 バイトのリテラルです。
func decompressRLE(src []byte) ([]byte, error) {
	size, p, err := readHeader(src, FormatRLE, true)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, size)
	for len(out) < size {
		if p >= len(src) {
			return nil, corrupt(FormatRLE, "unexpected end of stream")
		}
		flag := src[p]
		p++
		if flag&0x80 != 0 {
			n := int(flag&0x7F) + 3
			if p >= len(src) {
				return nil, corrupt(FormatRLE, "unexpected end of stream")
			}
			if len(out)+n > size {
				return nil, corrupt(FormatRLE, "run overruns declared size")
			}
			b := src[p]
			p++
			for i := 0; i < n; i++ {
				out = append(out, b)
			}
			continue
		}
		n := int(flag&0x7F) + 1
		if len(out)+n > size {
			return nil, corrupt(FormatRLE, "literal overruns declared size")
		}
		if p+n > len(src) {
			return nil, corrupt(FormatRLE, "unexpected end of stream")
		}
		out = append(out, src[p:p+n]...)
		p += n
	}
	if err := checkTrailing(src, p, FormatRLE); err != nil {
		return nil, err
	}
	return out, nil
}

func compressRLE(data []byte) []byte {
	out := writeHeader(tagRLE, len(data))
	var literal []byte
	flush := func() {
		for len(literal) > 0 {
			n := min(len(literal), rleMaxLiteral)
			out = append(out, byte(n-1))
			out = append(out, literal[:n]...)
			literal = literal[n:]
		}
	}
	for pos := 0; pos < len(data); {
		run := 1
		for pos+run < len(data) && run < rleMaxRun && data[pos+run] == data[pos] {
			run++
		}
		if run >= 3 {
			flush()
			out = append(out, 0x80|byte(run-3), data[pos])
			pos += run
			continue
		}
		literal = append(literal, data[pos])
		pos++
		if len(literal) == rleMaxLiteral {
			flush()
		}
	}
	flush()
	return padTo4(out)
}
