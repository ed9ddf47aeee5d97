package compress

import (
	"container/heap"
	"fmt"
)

const huffmanMaxOffset = 0x3F

// huffNode はハフマン木のノードです
type huffNode struct {
	leaf        bool
	sym         byte
	freq        int
	order       int
	left, right *huffNode
}

type huffHeap []*huffNode

func (h huffHeap) Len() int { return len(h) }
func (h huffHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq < h[j].freq
	}
	return h[i].order < h[j].order
}
func (h huffHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *huffHeap) Push(x any)   { *h = append(*h, x.(*huffNode)) }
func (h *huffHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

// decompressHuffman はハフマン形式のデータを解凍します。
// ツリーテーブルはオフセット4から始まり、先頭バイトが (テーブル長/2)-1 です。
// ノードの下位6ビットが子ペアへのオフセット、bit7/bit6 が左右の子が葉であることを示します。
func decompressHuffman(src []byte) ([]byte, error) {
	f := Detect(src)
	if f != FormatHuffman4 && f != FormatHuffman8 {
		return nil, corrupt(FormatHuffman8, "bad header")
	}
	size, _, err := readHeader(src, f, false)
	if err != nil {
		return nil, err
	}
	treeEnd := 4 + (int(src[4])+1)*2
	if treeEnd > len(src) {
		return nil, corrupt(f, "tree table exceeds input")
	}
	const root = 5
	br := NewBitReader(src[treeEnd:])
	out := make([]byte, 0, size)
	half, haveHalf := byte(0), false
	cur := root
	for len(out) < size {
		bit, err := br.ReadBit()
		if err != nil {
			return nil, corrupt(f, "unexpected end of bitstream")
		}
		node := src[cur]
		child := (cur &^ 1) + int(node&huffmanMaxOffset)*2 + 2 + int(bit)
		if child >= treeEnd {
			return nil, corrupt(f, "tree offset out of range")
		}
		leafMask := byte(0x80)
		if bit == 1 {
			leafMask = 0x40
		}
		if node&leafMask == 0 {
			cur = child
			continue
		}
		sym := src[child]
		cur = root
		if f == FormatHuffman8 {
			out = append(out, sym)
			continue
		}
		if !haveHalf {
			half, haveHalf = sym&0x0F, true
			continue
		}
		out = append(out, half|(sym&0x0F)<<4)
		haveHalf = false
	}
	if err := checkTrailing(src, treeEnd+br.Offset(), f); err != nil {
		return nil, err
	}
	return out, nil
}

func compressHuffman(data []byte, bits int) ([]byte, error) {
	f, tag, nsyms := FormatHuffman8, byte(tagHuffman8), 256
	if bits == 4 {
		f, tag, nsyms = FormatHuffman4, tagHuffman4, 16
	}
	if len(data) > maxShortSize {
		return nil, fmt.Errorf("%w: %v: input too large", ErrUnsupportedCompression, f)
	}
	syms := make([]byte, 0, len(data)*2)
	for _, b := range data {
		if bits == 4 {
			syms = append(syms, b&0x0F, b>>4)
		} else {
			syms = append(syms, b)
		}
	}
	root := buildHuffmanTree(syms, nsyms)
	table, err := layoutHuffmanTree(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrUnsupportedCompression, f, err)
	}
	codes := make(map[byte][]uint32)
	var walk func(n *huffNode, code []uint32)
	walk = func(n *huffNode, code []uint32) {
		if n.leaf {
			codes[n.sym] = append([]uint32(nil), code...)
			return
		}
		walk(n.left, append(code, 0))
		walk(n.right, append(code, 1))
	}
	walk(root, nil)

	out := writeHeader(tag, len(data))
	out = append(out, table...)
	bw := &BitWriter{out: out}
	for _, s := range syms {
		for _, bit := range codes[s] {
			bw.WriteBit(bit)
		}
	}
	return bw.Bytes(), nil
}

// buildHuffmanTree は出現頻度からハフマン木を作ります。
// シンボルが1種類以下の場合はダミーの葉を補って必ず2分木にします。
func buildHuffmanTree(syms []byte, nsyms int) *huffNode {
	freq := make([]int, nsyms)
	for _, s := range syms {
		freq[s]++
	}
	h := &huffHeap{}
	order := 0
	for s, n := range freq {
		if n > 0 {
			*h = append(*h, &huffNode{leaf: true, sym: byte(s), freq: n, order: order})
			order++
		}
	}
	if h.Len() == 0 {
		*h = append(*h, &huffNode{leaf: true, sym: 0, freq: 1, order: order})
		order++
	}
	if h.Len() == 1 {
		s := (int((*h)[0].sym) + 1) % nsyms
		*h = append(*h, &huffNode{leaf: true, sym: byte(s), order: order})
		order++
	}
	heap.Init(h)
	for h.Len() > 1 {
		a := heap.Pop(h).(*huffNode)
		b := heap.Pop(h).(*huffNode)
		heap.Push(h, &huffNode{freq: a.freq + b.freq, order: order, left: a, right: b})
		order++
	}
	return (*h)[0]
}

// layoutHuffmanTree はハフマン木をテーブル形式に並べます。
// 子ペアは親から64ペア以内に置く必要があるため、期限の近いノードを優先して配置します。
func layoutHuffmanTree(root *huffNode) ([]byte, error) {
	type pending struct {
		node *huffNode
		idx  int
	}
	nodes := map[int]*huffNode{1: root}
	offsets := map[int]int{}
	queue := []pending{{root, 1}}
	nextPair := 1
	for len(queue) > 0 {
		best, deadline := 0, -1
		for k, p := range queue {
			if dl := p.idx/2 + huffmanMaxOffset + 1; deadline < 0 || dl < deadline {
				best, deadline = k, dl
			}
		}
		k := len(queue) - 1
		if deadline-nextPair < len(queue) {
			k = best
		}
		p := queue[k]
		queue = append(queue[:k], queue[k+1:]...)
		off := nextPair - p.idx/2 - 1
		if off < 0 || off > huffmanMaxOffset {
			return nil, fmt.Errorf("tree offset %d out of range", off)
		}
		offsets[p.idx] = off
		li := 2 * nextPair
		nodes[li], nodes[li+1] = p.node.left, p.node.right
		nextPair++
		if !p.node.left.leaf {
			queue = append(queue, pending{p.node.left, li})
		}
		if !p.node.right.leaf {
			queue = append(queue, pending{p.node.right, li + 1})
		}
	}
	// ビットストリームをワード境界から始めるため、ペア数を偶数に揃える
	if nextPair%2 != 0 {
		nextPair++
	}
	table := make([]byte, 2*nextPair)
	for idx, n := range nodes {
		if n.leaf {
			table[idx] = n.sym
			continue
		}
		b := byte(offsets[idx])
		if n.left.leaf {
			b |= 0x80
		}
		if n.right.leaf {
			b |= 0x40
		}
		table[idx] = b
	}
	table[0] = byte(nextPair - 1)
	return table, nil
}
