// Package session は1つのROMイメージを開き、読み出し・編集・保存をまとめて扱います。
//
// 読み出しは圧縮を自動的に解凍し、ゲーム設定で役割が割り当てられたコンテナのメンバーは
// 構造を解読して返します。書き込みはオーバーレイに溜められ、Save で圧縮し直して
// イメージ全体を組み立て直します。
//
//	s, err := session.Open(image)
//	if err != nil {
//	    return err
//	}
//	res, err := s.Read("a/0/1/6:1", session.ReadOptions{})
//	fmt.Println(res.Decoded["species"])
package session

import (
	"bytes"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/Creative-Genius2/LinkPlay/pkg/compress"
	"github.com/Creative-Genius2/LinkPlay/pkg/gamedb"
	"github.com/Creative-Genius2/LinkPlay/pkg/ndsarc"
)

// Option はセッションの設定を変更します
type Option func(*Session)

// WithLogger はログの出力先を設定します。既定では何も出力しません
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGameDB はゲーム設定を差し替えます。既定は埋め込みの games.yaml です
func WithGameDB(db *gamedb.DB) Option {
	return func(s *Session) {
		if db != nil {
			s.db = db
		}
	}
}

// Session は開いているROMイメージと未保存の編集です。
// 複数のゴルーチンから呼び出しても状態が壊れないようにロックで保護します。
type Session struct {
	mu     sync.Mutex
	tree   *ndsarc.Tree
	db     *gamedb.DB
	game   *gamedb.Game
	logger *slog.Logger

	overlay map[string]*overlayEntry
	text    *textState
	closed  bool
}

// overlayEntry は未保存の編集1件です。data は解凍済みの内容です
type overlayEntry struct {
	data   []byte
	format compress.Format
}

// Info はイメージの概要です
type Info struct {
	Header     ndsarc.Header `json:"header"`
	Game       string        `json:"game,omitempty"`
	Generation int           `json:"generation,omitempty"`
	Stats      ndsarc.Stats  `json:"stats"`
	Modified   []string      `json:"modified,omitempty"`
}

// Open はイメージを解析してセッションを作成します。イメージはコピーして保持します
func Open(image []byte, opts ...Option) (*Session, error) {
	s := &Session{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		overlay: map[string]*overlayEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.db == nil {
		s.db = gamedb.Default()
	}

	tree, err := ndsarc.Open(bytes.Clone(image))
	if err != nil {
		return nil, pathError("open", "", err)
	}
	s.tree = tree

	h := tree.Header
	if g, err := s.db.Lookup(h.ShortCode()); err == nil {
		s.game = g
		s.logger.Debug("game detected", "code", h.GameCode, "title", g.Title, "generation", g.Generation)
	} else {
		s.logger.Debug("no game configuration", "code", h.GameCode, "platform", h.Platform)
	}
	return s, nil
}

// Close はセッションを閉じ、イメージと編集を破棄します
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.tree = nil
	s.overlay = nil
	s.text = nil
	return nil
}

func (s *Session) check(op string) error {
	if s.closed {
		return pathError(op, "", ErrClosed)
	}
	return nil
}

// Header はイメージのヘッダーを返します
func (s *Session) Header() ndsarc.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tree == nil {
		return ndsarc.Header{}
	}
	return s.tree.Header
}

// Game はイメージに対応するゲーム設定を返します。対応する設定が無い場合は nil です
func (s *Session) Game() *gamedb.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game
}

// Info はヘッダー、ゲーム設定、ファイル数と未保存の編集をまとめて返します
func (s *Session) Info() (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("info"); err != nil {
		return Info{}, err
	}
	info := Info{
		Header:   s.tree.Header,
		Stats:    s.tree.Stats(),
		Modified: s.modified(),
	}
	if s.game != nil {
		info.Game = s.game.Title
		info.Generation = s.game.Generation
	}
	return info, nil
}

// Modified は未保存の編集があるパスを返します
func (s *Session) Modified() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modified()
}

func (s *Session) modified() []string {
	out := make([]string, 0, len(s.overlay))
	for p := range s.overlay {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// List はパスの子を一覧にします。未保存の編集があるファイルは編集後の大きさを返します
func (s *Session) List(p string, expand bool) ([]ndsarc.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("list"); err != nil {
		return nil, err
	}
	list, err := s.tree.List(p, expand)
	if err != nil {
		return nil, pathError("list", p, err)
	}
	for i := range list {
		if e, ok := s.overlay[list[i].Path]; ok {
			list[i].Size = len(e.data)
		}
	}
	return list, nil
}

// Walk はツリーのノードを深さ優先でたどります
func (s *Session) Walk(fn func(*ndsarc.Node) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("walk"); err != nil {
		return err
	}
	return s.tree.Walk(fn)
}

// locate はパスを解決します。メンバー指定はオーバーレイ上のコンテナにも対応します
func (s *Session) locate(op, p string) (ndsarc.Location, error) {
	loc, err := s.tree.Locate(p)
	if err == nil {
		return loc, nil
	}
	base, member := ndsarc.SplitMemberPath(p)
	if e, ok := s.overlay[base]; ok && member >= 0 {
		n, rerr := s.tree.Resolve(base)
		if rerr == nil {
			if c, perr := ndsarc.ParseNARC(e.data); perr == nil && member < c.Len() {
				return ndsarc.Location{Node: n, Member: member}, nil
			}
		}
	}
	return ndsarc.Location{}, pathError(op, p, err)
}

// container はオーバーレイを考慮してコンテナを返します
func (s *Session) container(n *ndsarc.Node) (*ndsarc.Container, error) {
	if e, ok := s.overlay[n.Path]; ok {
		return ndsarc.ParseNARC(e.data)
	}
	return s.tree.Container(n)
}

// onImage はイメージ上の (圧縮されたままの) バイト列を返します
func (s *Session) onImage(loc ndsarc.Location) ([]byte, error) {
	if !loc.IsMember() {
		return s.tree.FileBytes(loc.Node)
	}
	c, err := s.container(loc.Node)
	if err != nil {
		return nil, err
	}
	return c.Member(loc.Member)
}

// payload は位置の解凍済みの内容と元の圧縮形式を返します。オーバーレイがあればそれが優先されます
func (s *Session) payload(loc ndsarc.Location) ([]byte, compress.Format, error) {
	if e, ok := s.overlay[loc.Path()]; ok {
		return e.data, e.format, nil
	}
	raw, err := s.onImage(loc)
	if err != nil {
		return nil, compress.FormatNone, err
	}
	data, f := compress.Probe(raw, !loc.IsMember() && loc.Node.IsCode())
	if f != compress.FormatNone {
		s.logger.Debug("payload decompressed", "path", loc.Path(), "format", f, "size", len(raw), "decompressed", len(data))
	}
	return data, f, nil
}

// isMemberOf はパスがコンテナのメンバーを指しているかを返します
func isMemberOf(p, container string) bool {
	return strings.HasPrefix(p, container+":")
}
