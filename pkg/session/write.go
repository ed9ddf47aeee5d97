package session

import (
	"fmt"
	"slices"

	"github.com/Creative-Genius2/LinkPlay/pkg/compress"
	"github.com/Creative-Genius2/LinkPlay/pkg/ndsarc"
)

// Write はパスの内容を書き換えます。変更はオーバーレイに溜められ、Save まで反映されません。
// offset が nil の場合は内容全体を data で置き換え、指定した場合はその位置から上書きします。
// data は解凍後の形式で渡し、保存時に元の圧縮形式で圧縮し直されます。
func (s *Session) Write(p string, data []byte, offset *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("write"); err != nil {
		return err
	}
	loc, err := s.locate("write", p)
	if err != nil {
		return err
	}
	if loc.Node.Kind == ndsarc.KindFolder {
		return pathError("write", p, fmt.Errorf("%w: %s is a folder", ndsarc.ErrNotFound, loc.Node.Path))
	}
	current, format, err := s.payload(loc)
	if err != nil {
		return pathError("write", p, err)
	}

	var next []byte
	if offset == nil {
		next = append([]byte(nil), data...)
	} else {
		off := *offset
		if off < 0 || off+len(data) > len(current) {
			return &PathError{Op: "write", Path: p, Offset: off, Err: fmt.Errorf("%w: %d bytes at offset %d exceed size %d", ndsarc.ErrOutOfBounds, len(data), off, len(current))}
		}
		next = append([]byte(nil), current...)
		copy(next[off:], data)
	}
	s.put(loc, next, format)
	return nil
}

// put はオーバーレイに内容を設定します。コンテナ全体を置き換えた場合はそのメンバーの編集を捨てます
func (s *Session) put(loc ndsarc.Location, data []byte, format compress.Format) {
	key := loc.Path()
	if !loc.IsMember() {
		for p := range s.overlay {
			if isMemberOf(p, key) {
				delete(s.overlay, p)
			}
		}
	}
	s.overlay[key] = &overlayEntry{data: data, format: format}
	if s.text != nil && s.game != nil && loc.Node.Path == s.game.Text.Path {
		s.text.invalidate(loc.Member)
	}
	s.logger.Debug("overlay updated", "path", key, "size", len(data), "format", format)
}

// Discard は未保存の編集をすべて捨てます
func (s *Session) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.overlay) > 0 {
		s.overlay = map[string]*overlayEntry{}
		s.text = nil
	}
}

// Save は編集を圧縮し直してイメージを組み立て、新しいイメージでセッションを開き直します。
// 失敗した場合、オーバーレイとセッションの状態は変わりません。
func (s *Session) Save() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("save"); err != nil {
		return nil, err
	}
	edits, err := s.edits()
	if err != nil {
		return nil, err
	}
	image, err := s.tree.Repack(edits)
	if err != nil {
		return nil, pathError("save", "", err)
	}
	tree, err := ndsarc.Open(image)
	if err != nil {
		return nil, pathError("save", "", fmt.Errorf("reopen repacked image: %w", err))
	}

	s.logger.Info("image saved", "edits", len(s.overlay), "files", len(edits), "size", len(image))
	s.tree = tree
	s.overlay = map[string]*overlayEntry{}
	s.text = nil
	return append([]byte(nil), image...), nil
}

// edits はオーバーレイからファイルIDごとの新しい内容を作成します
func (s *Session) edits() (map[int][]byte, error) {
	files := map[string]bool{}
	members := map[string][]int{}
	for _, p := range s.modified() {
		base, member := ndsarc.SplitMemberPath(p)
		if member >= 0 {
			members[base] = append(members[base], member)
			continue
		}
		files[p] = true
	}
	for base := range members {
		files[base] = true
	}

	edits := map[int][]byte{}
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	for _, p := range paths {
		n, err := s.tree.Resolve(p)
		if err != nil {
			return nil, pathError("save", p, err)
		}
		data, err := s.fileContent(n, members[p])
		if err != nil {
			return nil, err
		}
		edits[n.FileID] = data
	}
	return edits, nil
}

// fileContent は1ファイル分の保存する内容を作成します。
// メンバーの編集がある場合はコンテナを組み立て直します。
func (s *Session) fileContent(n *ndsarc.Node, edited []int) ([]byte, error) {
	whole, hasWhole := s.overlay[n.Path]
	if len(edited) == 0 {
		b, err := compress.Compress(whole.data, whole.format)
		if err != nil {
			return nil, pathError("save", n.Path, err)
		}
		return b, nil
	}

	c, err := s.container(n)
	if err != nil {
		return nil, pathError("save", n.Path, err)
	}
	list := c.Members()
	for _, i := range edited {
		e := s.overlay[ndsarc.MemberPath(n.Path, i)]
		if i >= len(list) {
			return nil, &PathError{Op: "save", Path: ndsarc.MemberPath(n.Path, i), Offset: -1, Err: fmt.Errorf("%w: container has %d members", ndsarc.ErrNotFound, len(list))}
		}
		b, err := compress.Compress(e.data, e.format)
		if err != nil {
			return nil, pathError("save", ndsarc.MemberPath(n.Path, i), err)
		}
		list[i] = b
	}
	out := c.Build(list)
	if hasWhole {
		if out, err = compress.Compress(out, whole.format); err != nil {
			return nil, pathError("save", n.Path, err)
		}
	}
	return out, nil
}
