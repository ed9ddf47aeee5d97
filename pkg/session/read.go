package session

import (
	"fmt"
	"strings"

	"github.com/Creative-Genius2/LinkPlay/pkg/compress"
	"github.com/Creative-Genius2/LinkPlay/pkg/decoder"
	"github.com/Creative-Genius2/LinkPlay/pkg/ndsarc"
)

// ReadOptions は読み出しの範囲と形式です
type ReadOptions struct {
	// Offset は解凍後の内容での開始位置です
	Offset int
	// Length は読み出す長さです。0 は末尾までを表します
	Length int
	// Raw が true の場合、解凍も解読もせずイメージ上のバイト列を返します
	Raw bool
}

// ReadResult は読み出しの結果です
type ReadResult struct {
	Path string `json:"path"`
	// Size は範囲指定前の内容の大きさです
	Size        int             `json:"size"`
	Compression compress.Format `json:"compression"`
	Data        []byte          `json:"-"`
	// Role はコンテナに割り当てられた役割です
	Role    decoder.Role  `json:"role,omitempty"`
	Decoded decoder.Value `json:"decoded,omitempty"`
	// DecodeError は解読に失敗した理由です。失敗してもバイト列は返します
	DecodeError string `json:"decode_error,omitempty"`
	// Err は ReadMany でこのパスの読み出しに失敗した場合のエラーです
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`
}

// Read はパスの内容を読み出します。
// 役割を持つコンテナのメンバーを範囲指定なしで読んだ場合は Decoded も設定します。
func (s *Session) Read(p string, opts ReadOptions) (*ReadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("read"); err != nil {
		return nil, err
	}
	return s.read(p, opts)
}

// ReadMany はカンマ区切りの複数のパスを指定の順に読み出します。
// 各パスは独立して読み出され、失敗したパスの結果は Err と Error だけを持ちます。
// 返すエラーはセッションが閉じている場合だけです。
func (s *Session) ReadMany(paths string, opts ReadOptions) ([]*ReadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("read"); err != nil {
		return nil, err
	}
	var out []*ReadResult
	for _, p := range strings.Split(paths, ",") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		res, err := s.read(p, opts)
		if err != nil {
			res = &ReadResult{Path: p, Err: err, Error: err.Error()}
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *Session) read(p string, opts ReadOptions) (*ReadResult, error) {
	loc, err := s.locate("read", p)
	if err != nil {
		return nil, err
	}
	res := &ReadResult{Path: loc.Path()}

	var data []byte
	if opts.Raw {
		data, res.Compression, err = s.rawBytes(loc)
	} else {
		data, res.Compression, err = s.payload(loc)
	}
	if err != nil {
		return nil, pathError("read", p, err)
	}
	res.Size = len(data)

	if opts.Offset < 0 || opts.Offset > len(data) {
		return nil, &PathError{Op: "read", Path: p, Offset: opts.Offset, Err: fmt.Errorf("%w: offset beyond %d bytes", ndsarc.ErrOutOfBounds, len(data))}
	}
	end := len(data)
	if opts.Length > 0 {
		end = opts.Offset + opts.Length
		if end > len(data) {
			return nil, &PathError{Op: "read", Path: p, Offset: opts.Offset, Err: fmt.Errorf("%w: %d bytes requested, %d available", ndsarc.ErrOutOfBounds, opts.Length, len(data)-opts.Offset)}
		}
	}
	res.Data = append([]byte(nil), data[opts.Offset:end]...)

	if opts.Raw || opts.Offset != 0 || end != len(data) || !loc.IsMember() {
		return res, nil
	}
	s.decode(res, loc, data)
	return res, nil
}

// rawBytes はイメージ上のバイト列を返します。未保存の編集は元の形式で圧縮し直して返します
func (s *Session) rawBytes(loc ndsarc.Location) ([]byte, compress.Format, error) {
	if e, ok := s.overlay[loc.Path()]; ok {
		b, err := compress.Compress(e.data, e.format)
		return b, e.format, err
	}
	b, err := s.onImage(loc)
	return b, compress.FormatNone, err
}

// decode はメンバーを役割に従って解読し、結果に設定します
func (s *Session) decode(res *ReadResult, loc ndsarc.Location, data []byte) {
	if s.game == nil {
		return
	}
	if loc.Node.Path == s.game.Text.Path {
		s.decodeText(res, loc.Member)
		return
	}
	c, ok := s.game.ContainerAt(loc.Node.Path)
	if !ok {
		return
	}
	role, err := decoder.ParseRole(c.Role)
	if err != nil {
		res.DecodeError = err.Error()
		return
	}
	res.Role = role
	v, err := decoder.Decode(role, data, decoder.Context{
		Generation: s.game.Generation,
		Index:      loc.Member,
		Label:      c.Label,
		Tables:     s.tables(),
		Related:    s.related,
	})
	if err != nil {
		res.DecodeError = err.Error()
		s.logger.Debug("decode failed", "path", res.Path, "role", role, "error", err)
		return
	}
	res.Decoded = v
}

// decodeText はテキストコンテナのメンバーを文字列の一覧として設定します
func (s *Session) decodeText(res *ReadResult, file int) {
	texts, err := s.textFile(file)
	if err != nil {
		res.DecodeError = err.Error()
		return
	}
	v := decoder.Value{"file": file, "count": len(texts), "entries": texts}
	if name := s.text.nameOf(file); name != "" {
		v["table"] = name
	}
	res.Decoded = v
}

// related は同じゲームの別の役割のコンテナから解凍済みのメンバーを返します。ロックを保持した状態で呼ばれます
func (s *Session) related(role decoder.Role, index int) ([]byte, error) {
	if s.game == nil {
		return nil, ErrNoGame
	}
	p, ok := s.game.PathFor(string(role))
	if !ok {
		return nil, fmt.Errorf("%w: no container for role %s", ndsarc.ErrNotFound, role)
	}
	n, err := s.tree.Resolve(p)
	if err != nil {
		return nil, err
	}
	data, _, err := s.payload(ndsarc.Location{Node: n, Member: index})
	return data, err
}
