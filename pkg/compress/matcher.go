package compress

const (
	hashBits   = 14
	hashSize   = 1 << hashBits
	chainLimit = 512
	minMatch   = 3
)

// matcher はハッシュチェーンで過去の一致位置を探索します
type matcher struct {
	data    []byte
	head    []int32
	prev    []int32
	minDisp int
	maxDisp int
	maxLen  int
}

func newMatcher(data []byte, minDisp, maxDisp, maxLen int) *matcher {
	m := &matcher{
		data:    data,
		head:    make([]int32, hashSize),
		prev:    make([]int32, len(data)),
		minDisp: minDisp,
		maxDisp: maxDisp,
		maxLen:  maxLen,
	}
	for i := range m.head {
		m.head[i] = -1
	}
	return m
}

func (m *matcher) hash(pos int) int {
	d := m.data
	v := uint32(d[pos])<<16 | uint32(d[pos+1])<<8 | uint32(d[pos+2])
	return int((v * 2654435761) >> (32 - hashBits))
}

// insert は pos をチェーンに登録します
func (m *matcher) insert(pos int) {
	if pos+minMatch > len(m.data) {
		return
	}
	h := m.hash(pos)
	m.prev[pos] = m.head[h]
	m.head[h] = int32(pos)
}

// advance は [pos, pos+n) をまとめて登録します
func (m *matcher) advance(pos, n int) {
	for i := 0; i < n; i++ {
		m.insert(pos + i)
	}
}

// find は pos から始まる最長一致の長さと距離を返します。
// 一致が minMatch 未満なら長さ0を返します。
func (m *matcher) find(pos int) (int, int) {
	d := m.data
	limit := len(d) - pos
	if limit > m.maxLen {
		limit = m.maxLen
	}
	if limit < minMatch {
		return 0, 0
	}
	bestLen, bestDisp := 0, 0
	h := m.hash(pos)
	for cand, steps := m.head[h], 0; cand >= 0 && steps < chainLimit; cand, steps = m.prev[cand], steps+1 {
		disp := pos - int(cand)
		if disp > m.maxDisp {
			break
		}
		if disp < m.minDisp {
			continue
		}
		s := int(cand)
		if d[s+bestLen] != d[pos+bestLen] {
			continue
		}
		n := 0
		for n < limit && d[s+n] == d[pos+n] {
			n++
		}
		if n > bestLen {
			bestLen, bestDisp = n, disp
			if n == limit {
				break
			}
		}
	}
	if bestLen < minMatch {
		return 0, 0
	}
	return bestLen, bestDisp
}
