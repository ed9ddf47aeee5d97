package session

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/Creative-Genius2/LinkPlay/pkg/crypto"
	"github.com/Creative-Genius2/LinkPlay/pkg/decoder"
	"github.com/Creative-Genius2/LinkPlay/pkg/ndsarc"
)

// textState はテキストコンテナの暗号パラメータと復号済みファイルのキャッシュです。
// 最初に使われたときに作成され、Save で破棄されます。
type textState struct {
	err   error
	node  *ndsarc.Node
	count int
	state crypto.CipherState

	files  map[int][]string
	names  map[string]int
	byFile map[int]string
	tables decoder.Tables
}

func (ts *textState) nameOf(file int) string {
	if ts == nil {
		return ""
	}
	return ts.byFile[file]
}

// invalidate は書き換えられたファイルのキャッシュを捨てます。member が負の場合はすべて捨てます
func (ts *textState) invalidate(member int) {
	if member < 0 {
		ts.files = map[int][]string{}
	} else {
		delete(ts.files, member)
	}
	ts.tables = nil
}

// textBootstrap はテキストコンテナの暗号パラメータを求め、テーブルを判別します。結果は失敗も含めてキャッシュされます
func (s *Session) textBootstrap() (*textState, error) {
	if s.text != nil {
		return s.text, s.text.err
	}
	ts := &textState{
		files:  map[int][]string{},
		names:  map[string]int{},
		byFile: map[int]string{},
	}
	s.text = ts
	if ts.err = s.initText(ts); ts.err != nil {
		s.logger.Debug("text tables unavailable", "error", ts.err)
		return ts, ts.err
	}
	s.identifyTables(ts)
	s.logger.Debug("text tables ready", "files", ts.count, "cipher", ts.state.Variant, "multiplier", ts.state.Multiplier, "named", len(ts.names))
	return ts, nil
}

func (s *Session) initText(ts *textState) error {
	if s.game == nil {
		return ErrNoGame
	}
	n, err := s.tree.Resolve(s.game.Text.Path)
	if err != nil {
		return err
	}
	c, err := s.container(n)
	if err != nil {
		return err
	}
	ts.node, ts.count = n, c.Len()

	variant, err := crypto.VariantForGeneration(s.game.Generation)
	if err != nil {
		return err
	}
	if variant == crypto.VariantGen4 {
		ts.state = crypto.NewGen4State()
		return nil
	}
	m, err := s.deriveMultiplier(ts)
	if err != nil {
		return err
	}
	ts.state = crypto.NewGen5State(m)
	return nil
}

// deriveMultiplier は参照エントリを持つファイルを探して第5世代の乗数を求めます。
// 設定の候補を先に試し、見つからなければ全ファイルを順に試します。
func (s *Session) deriveMultiplier(ts *textState) (uint16, error) {
	ref := s.game.Reference()
	seen := map[int]bool{}
	order := make([]int, 0, ts.count)
	for _, i := range ref.Candidates {
		if i >= 0 && i < ts.count && !seen[i] {
			seen[i] = true
			order = append(order, i)
		}
	}
	for i := 0; i < ts.count; i++ {
		if !seen[i] {
			order = append(order, i)
		}
	}
	for _, i := range order {
		data, _, err := s.payload(ndsarc.Location{Node: ts.node, Member: i})
		if err != nil {
			continue
		}
		m, err := crypto.DeriveMultiplier(data, ref.Entry, ref.Expected)
		if err != nil {
			continue
		}
		s.logger.Debug("text multiplier derived", "file", i, "multiplier", m)
		return m, nil
	}
	return 0, fmt.Errorf("%w: no file in %s has entry %d %q", crypto.ErrCipherDerivation, ts.node.Path, ref.Entry, ref.Expected)
}

// textFile はテキストファイルを復号して返します。ロックを保持した状態で呼ばれます
func (s *Session) textFile(file int) ([]string, error) {
	ts, err := s.textBootstrap()
	if err != nil {
		return nil, err
	}
	if texts, ok := ts.files[file]; ok {
		return texts, nil
	}
	if file < 0 || file >= ts.count {
		return nil, fmt.Errorf("%w: text file %d (0-%d)", ndsarc.ErrNotFound, file, ts.count-1)
	}
	data, _, err := s.payload(ndsarc.Location{Node: ts.node, Member: file})
	if err != nil {
		return nil, err
	}
	texts, err := crypto.DecodeFile(data, ts.state)
	if err != nil {
		return nil, fmt.Errorf("text file %d: %w", file, err)
	}
	ts.files[file] = texts
	return texts, nil
}

// tables は判別済みのテキストテーブルを返します。テキストが使えない場合は nil です
func (s *Session) tables() decoder.Tables {
	ts, err := s.textBootstrap()
	if err != nil {
		return nil
	}
	if ts.tables != nil {
		return ts.tables
	}
	t := decoder.Tables{}
	for name, file := range ts.names {
		if texts, err := s.textFile(file); err == nil {
			t[name] = texts
		}
	}
	ts.tables = t
	return t
}

// TextFile はテキストコンテナの file 番目のファイルを復号して返します
func (s *Session) TextFile(file int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("text"); err != nil {
		return nil, err
	}
	texts, err := s.textFile(file)
	if err != nil {
		return nil, pathError("text", strconv.Itoa(file), err)
	}
	return append([]string(nil), texts...), nil
}

// TextTable はテーブル名 (species など) またはファイル番号からテキストファイルを返します
func (s *Session) TextTable(name string) (int, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("text"); err != nil {
		return 0, nil, err
	}
	ts, err := s.textBootstrap()
	if err != nil {
		return 0, nil, pathError("text", name, err)
	}
	file, err := strconv.Atoi(name)
	if err != nil {
		var ok bool
		if file, ok = ts.names[name]; !ok {
			return 0, nil, pathError("text", name, ErrNoTable)
		}
	}
	texts, err := s.textFile(file)
	if err != nil {
		return 0, nil, pathError("text", name, err)
	}
	return file, append([]string(nil), texts...), nil
}

// TextTables は判別できたテーブル名とファイル番号の対応を返します
func (s *Session) TextTables() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("text"); err != nil {
		return nil, err
	}
	ts, err := s.textBootstrap()
	if err != nil {
		return nil, pathError("text", "", err)
	}
	return maps.Clone(ts.names), nil
}

// WriteText はテキストファイルの1エントリを暗号化して書き換えます。
// 変更は Write と同じくオーバーレイに溜められます。
func (s *Session) WriteText(file, entry int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("write text"); err != nil {
		return err
	}
	ts, err := s.textBootstrap()
	if err != nil {
		return pathError("write text", "", err)
	}
	if file < 0 || file >= ts.count {
		return pathError("write text", strconv.Itoa(file), fmt.Errorf("%w: text file %d (0-%d)", ndsarc.ErrNotFound, file, ts.count-1))
	}
	loc := ndsarc.Location{Node: ts.node, Member: file}
	data, format, err := s.payload(loc)
	if err != nil {
		return pathError("write text", loc.Path(), err)
	}
	tf, err := crypto.ParseTextFile(data, ts.state.Variant)
	if err != nil {
		return pathError("write text", loc.Path(), err)
	}
	if err := tf.SetEntry(entry, text, ts.state); err != nil {
		return pathError("write text", loc.Path(), err)
	}
	s.put(loc, tf.Bytes(), format)
	return nil
}
