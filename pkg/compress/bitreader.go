package compress

import (
	"encoding/binary"
	"io"
)

// BitReader はリトルエンディアンの32ビットワード単位でビットを読み込みます。
// 各ワードは最上位ビットから順に取り出されます。
type BitReader struct {
	src   []byte
	pos   int
	word  uint32
	count uint // 現在のワードに残っているビット数 (0-32)
}

// NewBitReader は新しい BitReader を作成します
func NewBitReader(src []byte) *BitReader {
	return &BitReader{src: src}
}

// ReadBit は1ビット読み込みます。ワードが尽きた場合は io.ErrUnexpectedEOF を返します
func (br *BitReader) ReadBit() (uint32, error) {
	if br.count == 0 {
		if br.pos+4 > len(br.src) {
			return 0, io.ErrUnexpectedEOF
		}
		br.word = binary.LittleEndian.Uint32(br.src[br.pos:])
		br.pos += 4
		br.count = 32
	}
	br.count--
	return (br.word >> br.count) & 1, nil
}

// Offset は次に読み込むワードの位置を返します
func (br *BitReader) Offset() int {
	return br.pos
}

// BitWriter は BitReader と対になる書き込み側です
type BitWriter struct {
	out   []byte
	word  uint32
	count uint
}

// WriteBit は1ビット書き込みます
func (bw *BitWriter) WriteBit(bit uint32) {
	bw.word = bw.word<<1 | bit&1
	bw.count++
	if bw.count == 32 {
		bw.out = binary.LittleEndian.AppendUint32(bw.out, bw.word)
		bw.word, bw.count = 0, 0
	}
}

// Bytes は残りのビットを最上位側に詰めてワード境界まで出力します
func (bw *BitWriter) Bytes() []byte {
	if bw.count > 0 {
		bw.out = binary.LittleEndian.AppendUint32(bw.out, bw.word<<(32-bw.count))
		bw.word, bw.count = 0, 0
	}
	return bw.out
}
