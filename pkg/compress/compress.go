// Package compress はニンテンドーDSのBIOS互換圧縮形式を扱うパッケージです。
//
// サポートする形式:
//   - LZ10 (0x10): 12ビット窓のLZ77
//   - LZ11 (0x11): 長さフィールドを拡張したLZ77
//   - Huffman (0x24 / 0x28): 4ビット/8ビットシンボルのハフマン符号
//   - RLE (0x30): ランレングス
//   - BLZ: ARM9バイナリやオーバーレイで使われる後方LZ (末尾8バイトのフッター)
//
// 先頭1バイトのタグで形式を判別し、タグが無い場合のみBLZのフッターを試します。
//
//	data, err := compress.Decompress(raw)
//	if errors.Is(err, compress.ErrUnsupportedCompression) {
//	    // 非圧縮として扱う
//	}
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedCompression は形式を判別できない、またはストリームが壊れている場合のエラー
var ErrUnsupportedCompression = errors.New("unsupported compression")

// Format は圧縮形式を表します
type Format int

const (
	FormatNone Format = iota
	FormatLZ10
	FormatLZ11
	FormatHuffman4
	FormatHuffman8
	FormatRLE
	FormatBLZ
)

const (
	tagLZ10     = 0x10
	tagLZ11     = 0x11
	tagHuffman4 = 0x24
	tagHuffman8 = 0x28
	tagRLE      = 0x30

	// 24ビットのサイズフィールドに収まらない場合は拡張ヘッダーを使う
	maxShortSize = 0xFFFFFF
)

var formatNames = map[Format]string{
	FormatNone:     "none",
	FormatLZ10:     "lz10",
	FormatLZ11:     "lz11",
	FormatHuffman4: "huffman4",
	FormatHuffman8: "huffman8",
	FormatRLE:      "rle",
	FormatBLZ:      "blz",
}

// String は形式名を返します
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Tag は先頭バイトに書かれるタグを返します。タグを持たない形式は0を返します
func (f Format) Tag() byte {
	switch f {
	case FormatLZ10:
		return tagLZ10
	case FormatLZ11:
		return tagLZ11
	case FormatHuffman4:
		return tagHuffman4
	case FormatHuffman8:
		return tagHuffman8
	case FormatRLE:
		return tagRLE
	}
	return 0
}

// MarshalText は形式名をテキストとして返します
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFormat は形式名から Format を返します
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return FormatNone, fmt.Errorf("unknown compression format %q", name)
}

// Detect は先頭のタグから形式を推定します。
// タグが無い、またはヘッダーが短すぎる場合は FormatNone を返します。
// BLZ はタグを持たないため DetectFooter で判定してください。
func Detect(data []byte) Format {
	if len(data) < 4 {
		return FormatNone
	}
	switch data[0] {
	case tagLZ10:
		return FormatLZ10
	case tagLZ11:
		return FormatLZ11
	case tagHuffman4:
		if len(data) < 6 {
			return FormatNone
		}
		return FormatHuffman4
	case tagHuffman8:
		if len(data) < 6 {
			return FormatNone
		}
		return FormatHuffman8
	case tagRLE:
		return FormatRLE
	}
	return FormatNone
}

// Decompress は形式を自動判別してデータを解凍します。
// 先頭タグを優先し、判別できない場合やタグでの解凍に失敗した場合はBLZフッターを試します。
func Decompress(data []byte) ([]byte, error) {
	f := Detect(data)
	if f == FormatNone {
		if DetectFooter(data) {
			return DecompressAs(data, FormatBLZ)
		}
		return nil, fmt.Errorf("%w: no recognizable header", ErrUnsupportedCompression)
	}
	out, err := DecompressAs(data, f)
	if err != nil && DetectFooter(data) {
		// BLZのデータが偶然タグと同じバイトで始まっている場合
		if blz, blzErr := DecompressAs(data, FormatBLZ); blzErr == nil {
			return blz, nil
		}
	}
	return out, err
}

// DecompressAs は指定した形式としてデータを解凍します
func DecompressAs(data []byte, f Format) ([]byte, error) {
	switch f {
	case FormatNone:
		return append([]byte(nil), data...), nil
	case FormatLZ10:
		return decompressLZ10(data)
	case FormatLZ11:
		return decompressLZ11(data)
	case FormatHuffman4, FormatHuffman8:
		return decompressHuffman(data)
	case FormatRLE:
		return decompressRLE(data)
	case FormatBLZ:
		return decompressBLZ(data)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, f)
}

// Compress は指定した形式でデータを圧縮します。
// FormatNone の場合はコピーを返します。
func Compress(data []byte, f Format) ([]byte, error) {
	switch f {
	case FormatNone:
		return append([]byte(nil), data...), nil
	case FormatLZ10:
		return compressLZ10(data), nil
	case FormatLZ11:
		return compressLZ11(data), nil
	case FormatHuffman4:
		return compressHuffman(data, 4)
	case FormatHuffman8:
		return compressHuffman(data, 8)
	case FormatRLE:
		return compressRLE(data), nil
	case FormatBLZ:
		return compressBLZ(data)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedCompression, f)
}

// writeHeader はタグとサイズからヘッダーを作成します
func writeHeader(tag byte, size int) []byte {
	if size <= maxShortSize {
		h := make([]byte, 4)
		binary.LittleEndian.PutUint32(h, uint32(tag)|uint32(size)<<8)
		return h
	}
	h := make([]byte, 8)
	h[0] = tag
	binary.LittleEndian.PutUint32(h[4:], uint32(size))
	return h
}

// readHeader はヘッダーを読み、展開後のサイズとストリームの開始位置を返します
func readHeader(src []byte, f Format, extended bool) (int, int, error) {
	if len(src) < 4 {
		return 0, 0, corrupt(f, "header too short")
	}
	size := int(binary.LittleEndian.Uint32(src) >> 8)
	if size == 0 && extended && len(src) >= 8 {
		if ext := int(binary.LittleEndian.Uint32(src[4:])); ext > maxShortSize {
			return ext, 8, nil
		}
	}
	return size, 4, nil
}

// padTo4 は出力を4バイト境界までゼロで埋めます
func padTo4(out []byte) []byte {
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

// checkTrailing は p 以降に4バイト境界までのパディングを超える入力が残っていないかを確認します
func checkTrailing(src []byte, p int, f Format) error {
	if len(src) > (p+3)&^3 {
		return corrupt(f, fmt.Sprintf("%d trailing bytes after stream", len(src)-p))
	}
	return nil
}

func corrupt(f Format, msg string) error {
	return fmt.Errorf("%w: %v: %s", ErrUnsupportedCompression, f, msg)
}

// Probe は解凍を試み、成功した場合は解凍結果と形式を返します。
// 判別できない、または解凍に失敗した場合は元のデータと FormatNone を返します。
// footer が true の場合、タグでの解凍に失敗したデータやタグの無いデータにBLZを試します。
func Probe(data []byte, footer bool) ([]byte, Format) {
	if f := Detect(data); f != FormatNone {
		if out, err := DecompressAs(data, f); err == nil {
			return out, f
		}
	}
	if footer && DetectFooter(data) {
		if out, err := DecompressAs(data, FormatBLZ); err == nil {
			return out, FormatBLZ
		}
	}
	return data, FormatNone
}
