package ndsarc

import (
	"encoding/binary"
	"fmt"

	"github.com/Creative-Genius2/LinkPlay/pkg/compress"
)

const (
	narcHeaderSize  = 0x10
	narcBOM         = 0xFFFE
	narcVersion     = 0x0100
	narcSections    = 3
	narcAlign       = 4
	sectionHeadSize = 8
	btafHeadSize    = 12
	btafEntrySize   = 8
)

// Entry はコンテナのメンバー1つ分の情報です
type Entry struct {
	Index int `json:"index"`
	// Offset はデータセクション先頭からの位置です
	Offset      int             `json:"offset"`
	Length      int             `json:"length"`
	Compression compress.Format `json:"compression"`
}

// Container はNARC形式のコンテナです。メンバーは元のバイト列を参照します
type Container struct {
	version uint16
	names   []byte // BTNFセクション全体 (ヘッダーを含む)
	data    []byte // GMIFのデータ部分
	entries []Entry
}

// ParseNARC はNARC形式のバイト列を解析します
func ParseNARC(b []byte) (*Container, error) {
	if len(b) < narcHeaderSize || string(b[:4]) != narcMagic {
		return nil, fmt.Errorf("%w: missing NARC signature", ErrCorruptArchive)
	}
	if bom := binary.LittleEndian.Uint16(b[4:]); bom != narcBOM {
		return nil, fmt.Errorf("%w: NARC byte order mark 0x%04X", ErrCorruptArchive, bom)
	}
	size := int(binary.LittleEndian.Uint32(b[8:]))
	if size > len(b) || size < narcHeaderSize {
		return nil, fmt.Errorf("%w: NARC size 0x%X exceeds 0x%X", ErrCorruptArchive, size, len(b))
	}
	b = b[:size]
	if hs := binary.LittleEndian.Uint16(b[0x0C:]); hs != narcHeaderSize {
		return nil, fmt.Errorf("%w: NARC header size 0x%X", ErrCorruptArchive, hs)
	}
	if n := binary.LittleEndian.Uint16(b[0x0E:]); n != narcSections {
		return nil, fmt.Errorf("%w: NARC has %d sections", ErrCorruptArchive, n)
	}
	c := &Container{version: binary.LittleEndian.Uint16(b[6:])}

	btaf, next, err := section(b, narcHeaderSize, "BTAF")
	if err != nil {
		return nil, err
	}
	btnf, next, err := section(b, next, "BTNF")
	if err != nil {
		return nil, err
	}
	gmif, _, err := section(b, next, "GMIF")
	if err != nil {
		return nil, err
	}
	c.names = btnf
	c.data = gmif[sectionHeadSize:]

	if len(btaf) < btafHeadSize {
		return nil, fmt.Errorf("%w: BTAF too short", ErrCorruptArchive)
	}
	count := int(binary.LittleEndian.Uint16(btaf[8:]))
	if btafHeadSize+count*btafEntrySize > len(btaf) {
		return nil, fmt.Errorf("%w: BTAF holds %d entries in 0x%X bytes", ErrCorruptArchive, count, len(btaf))
	}
	for i := 0; i < count; i++ {
		pos := btafHeadSize + i*btafEntrySize
		start := int(binary.LittleEndian.Uint32(btaf[pos:]))
		end := int(binary.LittleEndian.Uint32(btaf[pos+4:]))
		if start > end || end > len(c.data) {
			return nil, fmt.Errorf("%w: member %d (0x%X-0x%X) outside data section of 0x%X bytes", ErrCorruptArchive, i, start, end, len(c.data))
		}
		c.entries = append(c.entries, Entry{
			Index:       i,
			Offset:      start,
			Length:      end - start,
			Compression: compress.Detect(c.data[start:end]),
		})
	}
	return c, nil
}

// section は pos から始まるセクションを読み、セクション全体と次の位置を返します
func section(b []byte, pos int, magic string) ([]byte, int, error) {
	if pos+sectionHeadSize > len(b) || string(b[pos:pos+4]) != magic {
		return nil, 0, fmt.Errorf("%w: %s section not found at 0x%X", ErrCorruptArchive, magic, pos)
	}
	size := int(binary.LittleEndian.Uint32(b[pos+4:]))
	if size < sectionHeadSize || pos+size > len(b) {
		return nil, 0, fmt.Errorf("%w: %s section size 0x%X", ErrCorruptArchive, magic, size)
	}
	return b[pos : pos+size], pos + size, nil
}

// Len はメンバー数を返します
func (c *Container) Len() int {
	return len(c.entries)
}

// Entries はメンバーの一覧を返します
func (c *Container) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Member は i 番目のメンバーのバイト列を返します。返り値を変更してはいけません
func (c *Container) Member(i int) ([]byte, error) {
	if i < 0 || i >= len(c.entries) {
		return nil, fmt.Errorf("%w: member %d of %d", ErrNotFound, i, len(c.entries))
	}
	e := c.entries[i]
	end := e.Offset + e.Length
	return c.data[e.Offset:end:end], nil
}

// Members は全メンバーのバイト列を返します
func (c *Container) Members() [][]byte {
	out := make([][]byte, len(c.entries))
	for i := range c.entries {
		out[i], _ = c.Member(i)
	}
	return out
}

// Verify はエントリが番号順・位置順に並び、データセクションに収まっているかを検査します。
// 再構築したコンテナではデータセクションの長さが各メンバーを4バイト境界に揃えた長さの合計と一致します。
func (c *Container) Verify() error {
	prev, total := 0, 0
	for i, e := range c.entries {
		if e.Index != i {
			return fmt.Errorf("%w: entry %d has index %d", ErrCorruptArchive, i, e.Index)
		}
		if e.Offset < prev {
			return fmt.Errorf("%w: member %d starts before member %d", ErrCorruptArchive, i, i-1)
		}
		if e.Offset+e.Length > len(c.data) {
			return fmt.Errorf("%w: member %d exceeds data section", ErrCorruptArchive, i)
		}
		prev = e.Offset
		total += alignUp(e.Length, narcAlign)
	}
	if total != len(c.data) {
		return fmt.Errorf("%w: data section is 0x%X bytes, members need 0x%X", ErrCorruptArchive, len(c.data), total)
	}
	return nil
}

// Build はメンバーを差し替えたNARCを作成します。BTNFセクションは元のまま保持します。
// 各メンバーは4バイト境界に揃え、隙間は0xFFで埋めます。
func (c *Container) Build(members [][]byte) []byte {
	names := c.names
	if len(names) == 0 {
		names = emptyBTNF()
	}
	btafSize := btafHeadSize + len(members)*btafEntrySize
	var data []byte
	btaf := make([]byte, btafSize)
	copy(btaf, "BTAF")
	binary.LittleEndian.PutUint32(btaf[4:], uint32(btafSize))
	binary.LittleEndian.PutUint16(btaf[8:], uint16(len(members)))
	for i, m := range members {
		pos := btafHeadSize + i*btafEntrySize
		binary.LittleEndian.PutUint32(btaf[pos:], uint32(len(data)))
		binary.LittleEndian.PutUint32(btaf[pos+4:], uint32(len(data)+len(m)))
		data = append(data, m...)
		data = padWith(data, narcAlign, 0xFF)
	}

	total := narcHeaderSize + len(btaf) + len(names) + sectionHeadSize + len(data)
	out := make([]byte, narcHeaderSize, total)
	copy(out, narcMagic)
	binary.LittleEndian.PutUint16(out[4:], narcBOM)
	version := c.version
	if version == 0 {
		version = narcVersion
	}
	binary.LittleEndian.PutUint16(out[6:], version)
	binary.LittleEndian.PutUint32(out[8:], uint32(total))
	binary.LittleEndian.PutUint16(out[0x0C:], narcHeaderSize)
	binary.LittleEndian.PutUint16(out[0x0E:], narcSections)
	out = append(out, btaf...)
	out = append(out, names...)
	out = append(out, "GMIF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(sectionHeadSize+len(data)))
	return append(out, data...)
}

// NewNARC はメンバーから名前テーブルを持たないNARCを作成します
func NewNARC(members [][]byte) []byte {
	return (&Container{}).Build(members)
}

func emptyBTNF() []byte {
	b := make([]byte, 0x10)
	copy(b, "BTNF")
	binary.LittleEndian.PutUint32(b[4:], 0x10)
	binary.LittleEndian.PutUint32(b[8:], 4)
	binary.LittleEndian.PutUint16(b[12:], 0)
	binary.LittleEndian.PutUint16(b[14:], 1)
	return b
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

func padWith(b []byte, align int, fill byte) []byte {
	for len(b)%align != 0 {
		b = append(b, fill)
	}
	return b
}
