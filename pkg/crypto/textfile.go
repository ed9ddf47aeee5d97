package crypto

import (
	"encoding/binary"
	"fmt"
)

const (
	gen4HeaderSize = 4
	gen5HeaderSize = 0x0C
	entrySize      = 8
	maxEntries     = 10000
)

// TextFile はテキストコンテナのメンバー1つ分です。エントリは暗号化されたまま保持します
type TextFile struct {
	Variant Variant
	// Seed は第4世代のエントリテーブル鍵の種です
	Seed uint16
	// Entries は各エントリの暗号化済みバイト列です。第5世代では先頭セクションのエントリです
	Entries [][]byte

	extra    []uint16 // 第5世代のエントリごとの付加フィールド
	reserved uint32   // 第5世代ヘッダーのオフセット8
	sections [][]byte // 第5世代の2番目以降のセクション
}

// ParseTextFile はテキストファイルを解析します
func ParseTextFile(data []byte, v Variant) (*TextFile, error) {
	switch v {
	case VariantGen4:
		return parseGen4File(data)
	case VariantGen5:
		return parseGen5File(data)
	}
	return nil, fmt.Errorf("unknown cipher variant %v", v)
}

func parseGen4File(data []byte) (*TextFile, error) {
	if len(data) < gen4HeaderSize {
		return nil, fmt.Errorf("%w: header too short", ErrInvalidTextFile)
	}
	count := int(binary.LittleEndian.Uint16(data))
	tf := &TextFile{Variant: VariantGen4, Seed: binary.LittleEndian.Uint16(data[2:])}
	if count > maxEntries || gen4HeaderSize+count*entrySize > len(data) {
		return nil, fmt.Errorf("%w: entry table exceeds file (%d entries)", ErrInvalidTextFile, count)
	}
	base := uint16(uint32(tf.Seed) * gen4TableKey)
	for i := 0; i < count; i++ {
		key := uint32(base * uint16(i+1))
		key |= key << 16
		pos := gen4HeaderSize + i*entrySize
		off := int(binary.LittleEndian.Uint32(data[pos:]) ^ key)
		n := int(binary.LittleEndian.Uint32(data[pos+4:]) ^ key)
		if off < 0 || n < 0 || off+n*2 > len(data) || off+n*2 < off {
			return nil, fmt.Errorf("%w: entry %d out of range", ErrInvalidTextFile, i)
		}
		tf.Entries = append(tf.Entries, data[off:off+n*2])
	}
	return tf, nil
}

func parseGen5File(data []byte) (*TextFile, error) {
	if len(data) < gen5HeaderSize+4 {
		return nil, fmt.Errorf("%w: header too short", ErrInvalidTextFile)
	}
	numSections := int(binary.LittleEndian.Uint16(data))
	count := int(binary.LittleEndian.Uint16(data[2:]))
	if numSections == 0 || count > maxEntries || gen5HeaderSize+numSections*4 > len(data) {
		return nil, fmt.Errorf("%w: bad header (%d sections, %d entries)", ErrInvalidTextFile, numSections, count)
	}
	tf := &TextFile{Variant: VariantGen5, reserved: binary.LittleEndian.Uint32(data[8:])}
	for s := 0; s < numSections; s++ {
		off := int(binary.LittleEndian.Uint32(data[gen5HeaderSize+s*4:]))
		if off < 0 || off+4 > len(data) {
			return nil, fmt.Errorf("%w: section %d out of range", ErrInvalidTextFile, s)
		}
		size := int(binary.LittleEndian.Uint32(data[off:]))
		if size < 4 || off+size > len(data) {
			return nil, fmt.Errorf("%w: section %d length %d out of range", ErrInvalidTextFile, s, size)
		}
		section := data[off : off+size]
		if s > 0 {
			tf.sections = append(tf.sections, section)
			continue
		}
		if 4+count*entrySize > len(section) {
			return nil, fmt.Errorf("%w: entry table exceeds section", ErrInvalidTextFile)
		}
		for i := 0; i < count; i++ {
			pos := 4 + i*entrySize
			eoff := int(binary.LittleEndian.Uint32(section[pos:]))
			n := int(binary.LittleEndian.Uint16(section[pos+4:]))
			if eoff < 0 || eoff+n*2 > len(section) {
				return nil, fmt.Errorf("%w: entry %d out of range", ErrInvalidTextFile, i)
			}
			tf.Entries = append(tf.Entries, section[eoff:eoff+n*2])
			tf.extra = append(tf.extra, binary.LittleEndian.Uint16(section[pos+6:]))
		}
	}
	return tf, nil
}

// Bytes はテキストファイルをバイト列に戻します
func (tf *TextFile) Bytes() []byte {
	if tf.Variant == VariantGen5 {
		return tf.gen5Bytes()
	}
	count := len(tf.Entries)
	out := make([]byte, gen4HeaderSize+count*entrySize)
	binary.LittleEndian.PutUint16(out, uint16(count))
	binary.LittleEndian.PutUint16(out[2:], tf.Seed)
	base := uint16(uint32(tf.Seed) * gen4TableKey)
	for i, e := range tf.Entries {
		key := uint32(base * uint16(i+1))
		key |= key << 16
		pos := gen4HeaderSize + i*entrySize
		binary.LittleEndian.PutUint32(out[pos:], uint32(len(out))^key)
		binary.LittleEndian.PutUint32(out[pos+4:], uint32(len(e)/2)^key)
		out = append(out, e...)
	}
	return out
}

func (tf *TextFile) gen5Bytes() []byte {
	count := len(tf.Entries)
	section := make([]byte, 4+count*entrySize)
	for i, e := range tf.Entries {
		pos := 4 + i*entrySize
		binary.LittleEndian.PutUint32(section[pos:], uint32(len(section)))
		binary.LittleEndian.PutUint16(section[pos+4:], uint16(len(e)/2))
		if i < len(tf.extra) {
			binary.LittleEndian.PutUint16(section[pos+6:], tf.extra[i])
		}
		section = append(section, e...)
		for len(section)%4 != 0 {
			section = append(section, 0)
		}
	}
	binary.LittleEndian.PutUint32(section, uint32(len(section)))

	sections := append([][]byte{section}, tf.sections...)
	largest := 0
	for _, s := range sections {
		largest = max(largest, len(s))
	}
	out := make([]byte, gen5HeaderSize+len(sections)*4)
	binary.LittleEndian.PutUint16(out, uint16(len(sections)))
	binary.LittleEndian.PutUint16(out[2:], uint16(count))
	binary.LittleEndian.PutUint32(out[4:], uint32(largest))
	binary.LittleEndian.PutUint32(out[8:], tf.reserved)
	for s, data := range sections {
		binary.LittleEndian.PutUint32(out[gen5HeaderSize+s*4:], uint32(len(out)))
		out = append(out, data...)
	}
	return out
}

// Decode は全エントリを復号します
func (tf *TextFile) Decode(state CipherState) ([]string, error) {
	if state.Variant != tf.Variant {
		return nil, fmt.Errorf("cipher variant %v does not match file variant %v", state.Variant, tf.Variant)
	}
	texts := make([]string, len(tf.Entries))
	for i, e := range tf.Entries {
		s, err := DecodeEntry(e, i, state)
		if err != nil {
			return nil, err
		}
		texts[i] = s
	}
	return texts, nil
}

// SetEntry は1エントリを書き換えます。元のエントリが9ビット形式ならその形式を維持します。
// index がエントリ数と等しい場合は末尾に追加します。
func (tf *TextFile) SetEntry(index int, text string, state CipherState) error {
	if index < 0 || index > len(tf.Entries) {
		return fmt.Errorf("entry %d out of range (0-%d)", index, len(tf.Entries))
	}
	packed := index < len(tf.Entries) && IsPacked(tf.Entries[index], index, state)
	raw, err := EncodeEntry(text, index, state, packed)
	if err != nil {
		return fmt.Errorf("failed to encode entry %d: %w", index, err)
	}
	if index == len(tf.Entries) {
		tf.Entries = append(tf.Entries, raw)
		if tf.Variant == VariantGen5 {
			tf.extra = append(tf.extra, 0)
		}
		return nil
	}
	tf.Entries[index] = raw
	return nil
}

// DecodeFile はテキストファイルを解析して全エントリを復号します
func DecodeFile(data []byte, state CipherState) ([]string, error) {
	tf, err := ParseTextFile(data, state.Variant)
	if err != nil {
		return nil, err
	}
	return tf.Decode(state)
}

// EncodeFile は文字列の列からテキストファイルを作成します。seed は第4世代でのみ使われます
func EncodeFile(texts []string, state CipherState, seed uint16) ([]byte, error) {
	if err := state.validate(); err != nil {
		return nil, err
	}
	tf := &TextFile{Variant: state.Variant, Seed: seed}
	for i, s := range texts {
		if err := tf.SetEntry(i, s, state); err != nil {
			return nil, err
		}
	}
	return tf.Bytes(), nil
}
