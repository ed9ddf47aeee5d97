package crypto

const (
	packedMarker     = 0xF100
	packedBits       = 9
	packedMask       = 1<<packedBits - 1
	packedTerminator = packedMask
)

// packedReader は16ビットユニット列から9ビットのシンボルをLSB側から順に取り出します
type packedReader struct {
	units []uint16
	pos   int
	bits  uint32
	count uint
}

func newPackedReader(units []uint16) *packedReader {
	return &packedReader{units: units}
}

// Next は次のシンボルを返します。終端 (0x1FF) かユニットが尽きた場合は false を返します
func (pr *packedReader) Next() (uint16, bool) {
	for pr.count < packedBits {
		if pr.pos >= len(pr.units) {
			return 0, false
		}
		pr.bits |= uint32(pr.units[pr.pos]) << pr.count
		pr.pos++
		pr.count += 16
	}
	sym := uint16(pr.bits & packedMask)
	pr.bits >>= packedBits
	pr.count -= packedBits
	if sym == packedTerminator {
		return 0, false
	}
	return sym, true
}

// packSymbols は9ビットのシンボル列を終端付きで16ビットユニットに詰めます。
// 最後のユニットの余りビットは1で埋めます。
func packSymbols(syms []uint16) []uint16 {
	var units []uint16
	var bits uint32
	var count uint
	push := func(s uint16) {
		bits |= uint32(s&packedMask) << count
		count += packedBits
		for count >= 16 {
			units = append(units, uint16(bits))
			bits >>= 16
			count -= 16
		}
	}
	for _, s := range syms {
		push(s)
	}
	push(packedTerminator)
	if count > 0 {
		bits |= 0xFFFF << count
		units = append(units, uint16(bits))
	}
	return units
}
