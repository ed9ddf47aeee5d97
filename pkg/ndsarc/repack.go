package ndsarc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
)

const (
	relocateAlign     = 0x200
	fillByte          = 0xFF
	minCapacityShift  = 0x20000
	overlaySizeOffset = 0x1C
	overlaySizeMask   = 0x00FFFFFF
	arm9SizeOffset    = 0x2C
	arm7SizeOffset    = 0x3C
)

// Repack はファイルIDごとの新しい内容を反映したイメージを作成します。元のイメージは変更しません。
//
// 元の領域に収まるファイルはその場で書き換え、残りを0xFFで埋めます。
// 収まらないファイルはイメージ末尾の0x200境界へ移動し、FATを更新します。
// ARM9/ARM7 は移動できないため、収まらない場合は ErrRepack を返します。
// 変更が無い場合は元のイメージと同じバイト列を返します。
func (t *Tree) Repack(edits map[int][]byte) ([]byte, error) {
	if data, ok := edits[FileIDImage]; ok {
		if len(edits) > 1 {
			return nil, fmt.Errorf("%w: %s cannot be combined with other edits", ErrRepack, ImageName)
		}
		return bytes.Clone(data), nil
	}
	out := bytes.Clone(t.image)
	if len(edits) == 0 {
		return out, nil
	}
	if t.Header.Platform != PlatformNDS {
		return nil, fmt.Errorf("%w: %s image has no file table", ErrRepack, t.Header.Platform)
	}

	p := &packer{tree: t, out: out, spans: map[int]Section{}}
	for id, s := range t.fat {
		p.spans[id] = s
	}
	p.spans[FileIDARM9] = t.Header.ARM9
	p.spans[FileIDARM7] = t.Header.ARM7

	for _, id := range slices.Sorted(maps.Keys(edits)) {
		if err := p.apply(id, edits[id]); err != nil {
			return nil, err
		}
	}
	p.finishHeader()
	return p.out, nil
}

type packer struct {
	tree  *Tree
	out   []byte
	spans map[int]Section
}

// limit は start より後ろにある最も近い領域の先頭を返します。無ければ -1 です
func (p *packer) limit(id int, start uint32) int64 {
	h := p.tree.Header
	next := int64(-1)
	consider := func(s uint32) {
		if s > start && (next < 0 || int64(s) < next) {
			next = int64(s)
		}
	}
	consider(ndsHeaderSize)
	for _, s := range []Section{h.FNT, h.FAT, h.OVT9, h.OVT7} {
		if s.Size > 0 {
			consider(s.Offset)
		}
	}
	if h.BannerOffset != 0 {
		consider(h.BannerOffset)
	}
	for other, s := range p.spans {
		if other != id && s.Size > 0 {
			consider(s.Offset)
		}
	}
	return next
}

func (p *packer) apply(id int, data []byte) error {
	old, ok := p.spans[id]
	if !ok {
		return fmt.Errorf("%w: file id %d does not exist", ErrRepack, id)
	}
	next := p.limit(id, old.Offset)
	fits := next < 0 || int64(old.Offset)+int64(len(data)) <= next

	if id == FileIDARM9 || id == FileIDARM7 {
		if !fits {
			return fmt.Errorf("%w: %s grows to 0x%X bytes but only 0x%X are available", ErrRepack, codeName(id), len(data), next-int64(old.Offset))
		}
		p.writeInPlace(old, data)
		off := arm9SizeOffset
		if id == FileIDARM7 {
			off = arm7SizeOffset
		}
		binary.LittleEndian.PutUint32(p.out[off:], uint32(len(data)))
		p.spans[id] = Section{old.Offset, uint32(len(data))}
		return nil
	}

	var placed Section
	if fits && old.Size > 0 {
		p.writeInPlace(old, data)
		placed = Section{old.Offset, uint32(len(data))}
	} else {
		fill(p.out[old.Offset:old.End()])
		placed = p.appendAligned(data)
	}
	p.spans[id] = placed
	pos := int(p.tree.Header.FAT.Offset) + id*fatEntrySize
	binary.LittleEndian.PutUint32(p.out[pos:], placed.Offset)
	binary.LittleEndian.PutUint32(p.out[pos+4:], uint32(placed.End()))
	p.updateOverlaySize(id, len(data))
	return nil
}

func (p *packer) writeInPlace(old Section, data []byte) {
	end := int(old.Offset) + len(data)
	if end > len(p.out) {
		p.out = append(p.out, make([]byte, end-len(p.out))...)
	}
	copy(p.out[old.Offset:], data)
	if uint64(end) < old.End() {
		fill(p.out[end:old.End()])
	}
}

func (p *packer) appendAligned(data []byte) Section {
	p.out = padWith(p.out, relocateAlign, fillByte)
	start := len(p.out)
	p.out = append(p.out, data...)
	return Section{uint32(start), uint32(len(data))}
}

// updateOverlaySize は圧縮済みオーバーレイの格納サイズを更新します
func (p *packer) updateOverlaySize(fileID, size int) {
	for _, table := range []Section{p.tree.Header.OVT9, p.tree.Header.OVT7} {
		for pos := int(table.Offset); pos+overlayEntrySize <= int(table.End()); pos += overlayEntrySize {
			if int(binary.LittleEndian.Uint32(p.out[pos+overlayFileIDOff:])) != fileID {
				continue
			}
			v := binary.LittleEndian.Uint32(p.out[pos+overlaySizeOffset:])
			if v&overlaySizeMask == 0 {
				continue
			}
			v = v&^overlaySizeMask | uint32(size)&overlaySizeMask
			binary.LittleEndian.PutUint32(p.out[pos+overlaySizeOffset:], v)
		}
	}
}

// finishHeader は使用サイズと容量を更新し、ヘッダーが変わった場合だけCRCを再計算します
func (p *packer) finishHeader() {
	size := uint32(len(p.out))
	if size > binary.LittleEndian.Uint32(p.out[ndsUsedSizeOffset:]) {
		binary.LittleEndian.PutUint32(p.out[ndsUsedSizeOffset:], size)
	}
	capacity := p.out[ndsCapacityOffset]
	for capacity < 0x10 && uint64(minCapacityShift)<<capacity < uint64(size) {
		capacity++
	}
	p.out[ndsCapacityOffset] = capacity
	if !bytes.Equal(p.out[:ndsHeaderCRCOff], p.tree.image[:ndsHeaderCRCOff]) {
		binary.LittleEndian.PutUint16(p.out[ndsHeaderCRCOff:], CRC16(p.out[:ndsHeaderCRCOff]))
	}
}

func codeName(id int) string {
	if id == FileIDARM7 {
		return ARM7Name
	}
	return ARM9Name
}

func fill(b []byte) {
	for i := range b {
		b[i] = fillByte
	}
}
