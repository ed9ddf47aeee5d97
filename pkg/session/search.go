package session

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	"github.com/Creative-Genius2/LinkPlay/pkg/ndsarc"
)

// Match はバイト列の検索で見つかった位置です
type Match struct {
	Path   string `json:"path"`
	Offset int    `json:"offset"`
}

// NameMatch はテキストテーブルの検索で見つかったエントリです
type NameMatch struct {
	Table string `json:"table"`
	File  int    `json:"file"`
	Entry int    `json:"entry"`
	Text  string `json:"text"`
}

// SearchHex はコンテナの全メンバー (コンテナでなければファイル自体) の解凍後の内容から pattern を探します
func (s *Session) SearchHex(container string, pattern []byte) ([]Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("search"); err != nil {
		return nil, err
	}
	return s.searchBytes(container, pattern)
}

func (s *Session) searchBytes(p string, pattern []byte) ([]Match, error) {
	if len(pattern) == 0 {
		return nil, pathError("search", p, fmt.Errorf("empty pattern"))
	}
	loc, err := s.locate("search", p)
	if err != nil {
		return nil, err
	}
	targets := []ndsarc.Location{loc}
	if !loc.IsMember() && loc.Node.Kind == ndsarc.KindContainer {
		c, err := s.container(loc.Node)
		if err != nil {
			return nil, pathError("search", p, err)
		}
		targets = targets[:0]
		for i := 0; i < c.Len(); i++ {
			targets = append(targets, ndsarc.Location{Node: loc.Node, Member: i})
		}
	}

	var out []Match
	for _, t := range targets {
		data, _, err := s.payload(t)
		if err != nil {
			return nil, pathError("search", t.Path(), err)
		}
		for off := 0; ; {
			i := bytes.Index(data[off:], pattern)
			if i < 0 {
				break
			}
			out = append(out, Match{Path: t.Path(), Offset: off + i})
			off += i + 1
		}
	}
	return out, nil
}

// SearchName は判別済みのテキストテーブルから query を含むエントリを探します。
// exact が true の場合は大文字小文字を区別せず完全に一致するものだけを返します。
func (s *Session) SearchName(query string, exact bool) ([]NameMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("search"); err != nil {
		return nil, err
	}
	ts, err := s.textBootstrap()
	if err != nil {
		return nil, pathError("search", query, err)
	}
	names := make([]string, 0, len(ts.names))
	for name := range ts.names {
		names = append(names, name)
	}
	slices.Sort(names)

	q := normalizeText(query)
	var out []NameMatch
	for _, name := range names {
		file := ts.names[name]
		texts, err := s.textFile(file)
		if err != nil {
			continue
		}
		for i, t := range texts {
			n := normalizeText(t)
			if (exact && n == q) || (!exact && strings.Contains(n, q)) {
				out = append(out, NameMatch{Table: name, File: file, Entry: i, Text: t})
			}
		}
	}
	return out, nil
}

// SearchID はテーブル table で name と一致するエントリの番号を u16 として container から探します
func (s *Session) SearchID(container, table, name string) (int, []Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("search"); err != nil {
		return 0, nil, err
	}
	ts, err := s.textBootstrap()
	if err != nil {
		return 0, nil, pathError("search", name, err)
	}
	file, ok := ts.names[table]
	if !ok {
		return 0, nil, pathError("search", table, ErrNoTable)
	}
	texts, err := s.textFile(file)
	if err != nil {
		return 0, nil, pathError("search", table, err)
	}
	id := slices.IndexFunc(texts, func(t string) bool { return normalizeText(t) == normalizeText(name) })
	if id < 0 {
		return 0, nil, pathError("search", name, fmt.Errorf("%w: %q in %s", ndsarc.ErrNotFound, name, table))
	}
	matches, err := s.searchBytes(container, binary.LittleEndian.AppendUint16(nil, uint16(id)))
	return id, matches, err
}

// maxDiffs は Diff が列挙する差分の上限です
const maxDiffs = 256

// ByteDiff は1バイトの差分です
type ByteDiff struct {
	Offset int  `json:"offset"`
	A      byte `json:"a"`
	B      byte `json:"b"`
}

// DiffResult は2つのパスの内容の比較結果です
type DiffResult struct {
	A         string `json:"a"`
	B         string `json:"b"`
	SizeA     int    `json:"size_a"`
	SizeB     int    `json:"size_b"`
	SizeDelta int    `json:"size_delta"`
	// Total は共通の長さの範囲で異なるバイト数です
	Total int `json:"total"`
	// Diffs は先頭から最大 256 件の差分です
	Diffs []ByteDiff `json:"diffs"`
}

// Identical は2つの内容が完全に一致するかを返します
func (d *DiffResult) Identical() bool {
	return d.Total == 0 && d.SizeDelta == 0
}

// Diff は2つのパスの解凍後の内容を比較します
func (s *Session) Diff(a, b string) (*DiffResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("diff"); err != nil {
		return nil, err
	}
	da, err := s.contentOf("diff", a)
	if err != nil {
		return nil, err
	}
	db, err := s.contentOf("diff", b)
	if err != nil {
		return nil, err
	}
	res := &DiffResult{A: a, B: b, SizeA: len(da), SizeB: len(db), SizeDelta: len(db) - len(da), Diffs: []ByteDiff{}}
	for i := 0; i < min(len(da), len(db)); i++ {
		if da[i] == db[i] {
			continue
		}
		res.Total++
		if len(res.Diffs) < maxDiffs {
			res.Diffs = append(res.Diffs, ByteDiff{Offset: i, A: da[i], B: db[i]})
		}
	}
	return res, nil
}

func (s *Session) contentOf(op, p string) ([]byte, error) {
	loc, err := s.locate(op, p)
	if err != nil {
		return nil, err
	}
	data, _, err := s.payload(loc)
	if err != nil {
		return nil, pathError(op, p, err)
	}
	return data, nil
}

const hexDumpWidth = 16

// HexDump はバイト列を "位置  16進  ASCII" の行に整形します。base は先頭の位置です
func HexDump(data []byte, base int) string {
	var sb strings.Builder
	for off := 0; off < len(data); off += hexDumpWidth {
		line := data[off:min(off+hexDumpWidth, len(data))]
		hex := make([]string, len(line))
		ascii := make([]byte, len(line))
		for i, c := range line {
			hex[i] = fmt.Sprintf("%02X", c)
			ascii[i] = '.'
			if c >= 0x20 && c < 0x7F {
				ascii[i] = c
			}
		}
		fmt.Fprintf(&sb, "%08X  %-47s  %s\n", base+off, strings.Join(hex, " "), ascii)
	}
	return sb.String()
}
