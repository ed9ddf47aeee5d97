package ndsarc

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
)

const (
	fntDirEntrySize   = 8
	fntDirIDMask      = 0x0FFF
	fatEntrySize      = 8
	overlayEntrySize  = 0x20
	overlayFileIDOff  = 0x18
	overlay9Folder    = "overlay9"
	overlay7Folder    = "overlay7"
	narcMagic         = "NARC"
	overlayNameFormat = "overlay_%04d.bin"
)

// Node はツリーのノードです。Kind によって意味を持つフィールドが変わります
type Node struct {
	Name string
	Path string
	Kind Kind
	// FileID はファイルとコンテナのFAT上の番号です。コード領域は負の値を持ちます
	FileID int
	// Children はフォルダの子ノードです
	Children []*Node
}

// IsCode はコード領域 (ARM9/ARM7 とオーバーレイ) のファイルかを返します。
// BLZ圧縮はこれらのファイルにだけ使われます。
func (n *Node) IsCode() bool {
	if n.FileID == FileIDARM9 || n.FileID == FileIDARM7 {
		return true
	}
	dir, _, _ := strings.Cut(n.Path, "/")
	return n.Kind == KindFile && (dir == overlay9Folder || dir == overlay7Folder) && n.Path != dir
}

// Location はパスを解決した結果です
type Location struct {
	Node *Node
	// Member はコンテナのメンバー番号です。メンバーでなければ -1 です
	Member int
}

// IsMember はコンテナのメンバーを指しているかを返します
func (l Location) IsMember() bool {
	return l.Member >= 0
}

// Path は正規化されたパスを返します
func (l Location) Path() string {
	if l.Member < 0 {
		return l.Node.Path
	}
	return MemberPath(l.Node.Path, l.Member)
}

// Listing は一覧表示の1行です
type Listing struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Kind    Kind   `json:"kind"`
	Size    int    `json:"size"`
	Members int    `json:"members,omitempty"`
}

// Stats はツリー全体の集計です
type Stats struct {
	Files      int `json:"files"`
	Containers int `json:"containers"`
	Members    int `json:"members"`
	ImageSize  int `json:"image_size"`
}

// Tree はイメージから復元したファイルツリーです。イメージは読み取り専用として扱います
type Tree struct {
	Header Header

	image []byte
	root  *Node
	nodes map[string]*Node
	fat   []Section

	mu         sync.Mutex
	containers map[int]*Container
}

// Open はイメージを解析してツリーを作成します
func Open(image []byte) (*Tree, error) {
	h, err := ParseHeader(image)
	if err != nil {
		return nil, err
	}
	t := &Tree{
		Header:     h,
		image:      image,
		root:       &Node{Kind: KindFolder},
		nodes:      map[string]*Node{},
		containers: map[int]*Container{},
	}
	t.nodes[""] = t.root
	if h.Platform != PlatformNDS {
		t.addFile(t.root, ImageName, FileIDImage)
		return t, nil
	}
	if err := t.parseFAT(); err != nil {
		return nil, err
	}
	if h.FNT.Size > 0 {
		if err := t.parseFNT(); err != nil {
			return nil, err
		}
	}
	t.addFile(t.root, ARM9Name, FileIDARM9)
	t.addFile(t.root, ARM7Name, FileIDARM7)
	if err := t.addOverlays(h.OVT9, overlay9Folder); err != nil {
		return nil, err
	}
	if err := t.addOverlays(h.OVT7, overlay7Folder); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) parseFAT() error {
	fat := t.image[t.Header.FAT.Offset:t.Header.FAT.End()]
	if len(fat)%fatEntrySize != 0 {
		return fmt.Errorf("%w: FAT size 0x%X is not a multiple of %d", ErrCorruptArchive, len(fat), fatEntrySize)
	}
	for i := 0; i < len(fat); i += fatEntrySize {
		start := binary.LittleEndian.Uint32(fat[i:])
		end := binary.LittleEndian.Uint32(fat[i+4:])
		if start > end || uint64(end) > uint64(len(t.image)) {
			return fmt.Errorf("%w: FAT entry %d (0x%X-0x%X) outside image", ErrCorruptArchive, i/fatEntrySize, start, end)
		}
		t.fat = append(t.fat, Section{Offset: start, Size: end - start})
	}
	return nil
}

func (t *Tree) parseFNT() error {
	fnt := t.image[t.Header.FNT.Offset:t.Header.FNT.End()]
	if len(fnt) < fntDirEntrySize {
		return fmt.Errorf("%w: FNT too short", ErrCorruptArchive)
	}
	numDirs := int(binary.LittleEndian.Uint16(fnt[6:]))
	if numDirs == 0 || numDirs*fntDirEntrySize > len(fnt) {
		return fmt.Errorf("%w: FNT directory count %d", ErrCorruptArchive, numDirs)
	}
	visited := make([]bool, numDirs)

	var walk func(dir int, folder *Node) error
	walk = func(dir int, folder *Node) error {
		if visited[dir] {
			return fmt.Errorf("%w: FNT directory %d referenced twice", ErrCorruptArchive, dir)
		}
		visited[dir] = true
		p := int(binary.LittleEndian.Uint32(fnt[dir*fntDirEntrySize:]))
		id := int(binary.LittleEndian.Uint16(fnt[dir*fntDirEntrySize+4:]))
		for {
			if p >= len(fnt) {
				return fmt.Errorf("%w: FNT sub-table of directory %d runs past end", ErrCorruptArchive, dir)
			}
			b := fnt[p]
			p++
			if b == 0 {
				return nil
			}
			n := int(b & 0x7F)
			if p+n > len(fnt) {
				return fmt.Errorf("%w: FNT name runs past end", ErrCorruptArchive)
			}
			name := string(fnt[p : p+n])
			p += n
			if b&0x80 == 0 {
				if id >= len(t.fat) {
					return fmt.Errorf("%w: file %q has id %d beyond FAT", ErrCorruptArchive, name, id)
				}
				t.addFile(folder, name, id)
				id++
				continue
			}
			if p+2 > len(fnt) {
				return fmt.Errorf("%w: FNT directory id runs past end", ErrCorruptArchive)
			}
			child := int(binary.LittleEndian.Uint16(fnt[p:])) & fntDirIDMask
			p += 2
			if child >= numDirs {
				return fmt.Errorf("%w: directory %q has id %d beyond FNT", ErrCorruptArchive, name, child)
			}
			sub := t.addNode(folder, name, KindFolder, 0)
			if err := walk(child, sub); err != nil {
				return err
			}
		}
	}
	return walk(0, t.root)
}

func (t *Tree) addOverlays(sec Section, folderName string) error {
	if sec.Size == 0 {
		return nil
	}
	if _, exists := t.nodes[folderName]; exists {
		return nil
	}
	table := t.image[sec.Offset:sec.End()]
	if len(table)%overlayEntrySize != 0 {
		return fmt.Errorf("%w: %s table size 0x%X", ErrCorruptArchive, folderName, len(table))
	}
	folder := t.addNode(t.root, folderName, KindFolder, 0)
	for i := 0; i < len(table); i += overlayEntrySize {
		ovID := binary.LittleEndian.Uint32(table[i:])
		fileID := int(binary.LittleEndian.Uint32(table[i+overlayFileIDOff:]))
		if fileID >= len(t.fat) {
			return fmt.Errorf("%w: overlay %d has file id %d beyond FAT", ErrCorruptArchive, ovID, fileID)
		}
		t.addFile(folder, fmt.Sprintf(overlayNameFormat, ovID), fileID)
	}
	return nil
}

func (t *Tree) addNode(parent *Node, name string, kind Kind, id int) *Node {
	p := name
	if parent.Path != "" {
		p = parent.Path + "/" + name
	}
	n := &Node{Name: name, Path: p, Kind: kind, FileID: id}
	parent.Children = append(parent.Children, n)
	t.nodes[p] = n
	return n
}

func (t *Tree) addFile(parent *Node, name string, id int) *Node {
	kind := KindFile
	if start, end, err := t.region(id); err == nil && end-start >= 4 && string(t.image[start:start+4]) == narcMagic {
		kind = KindContainer
	}
	return t.addNode(parent, name, kind, id)
}

// region はファイルIDの領域を返します
func (t *Tree) region(id int) (uint32, uint32, error) {
	var s Section
	switch {
	case id == FileIDARM9:
		s = t.Header.ARM9
	case id == FileIDARM7:
		s = t.Header.ARM7
	case id == FileIDImage:
		s = Section{0, uint32(len(t.image))}
	case id >= 0 && id < len(t.fat):
		s = t.fat[id]
	default:
		return 0, 0, fmt.Errorf("%w: file id %d", ErrNotFound, id)
	}
	return s.Offset, s.Offset + s.Size, nil
}

// Image は元のイメージを返します。返り値を変更してはいけません
func (t *Tree) Image() []byte {
	return t.image
}

// Root はルートフォルダを返します
func (t *Tree) Root() *Node {
	return t.root
}

// FileCount はFATのエントリ数を返します
func (t *Tree) FileCount() int {
	return len(t.fat)
}

// Resolve はパスに対応するノードを返します
func (t *Tree) Resolve(p string) (*Node, error) {
	n, ok := t.nodes[CleanPath(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return n, nil
}

// Locate はメンバー指定を含むパスを解決します
func (t *Tree) Locate(p string) (Location, error) {
	if n, ok := t.nodes[CleanPath(p)]; ok {
		return Location{Node: n, Member: -1}, nil
	}
	base, member := SplitMemberPath(p)
	if member < 0 {
		return Location{}, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	n, err := t.Resolve(base)
	if err != nil {
		return Location{}, err
	}
	if n.Kind != KindContainer {
		return Location{}, fmt.Errorf("%w: %s is not a container", ErrNotFound, base)
	}
	c, err := t.Container(n)
	if err != nil {
		return Location{}, err
	}
	if member >= c.Len() {
		return Location{}, fmt.Errorf("%w: %s has %d members", ErrNotFound, base, c.Len())
	}
	return Location{Node: n, Member: member}, nil
}

// FileBytes はファイルまたはコンテナ全体のバイト列を返します。返り値を変更してはいけません
func (t *Tree) FileBytes(n *Node) ([]byte, error) {
	if n.Kind == KindFolder {
		return nil, fmt.Errorf("%w: %s is a folder", ErrNotFound, n.Path)
	}
	start, end, err := t.region(n.FileID)
	if err != nil {
		return nil, err
	}
	return t.image[start:end:end], nil
}

// Bytes は位置のバイト列を返します。メンバーの場合はコンテナ内の範囲です
func (t *Tree) Bytes(loc Location) ([]byte, error) {
	if !loc.IsMember() {
		return t.FileBytes(loc.Node)
	}
	c, err := t.Container(loc.Node)
	if err != nil {
		return nil, err
	}
	return c.Member(loc.Member)
}

// Container はコンテナを展開して返します。結果はキャッシュされます
func (t *Tree) Container(n *Node) (*Container, error) {
	if n.Kind != KindContainer {
		return nil, fmt.Errorf("%w: %s is not a container", ErrNotFound, n.Path)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if c, ok := t.containers[n.FileID]; ok {
		return c, nil
	}
	data, err := t.FileBytes(n)
	if err != nil {
		return nil, err
	}
	c, err := ParseNARC(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Path, err)
	}
	t.containers[n.FileID] = c
	return c, nil
}

// List はパスの子を一覧にします。
// expand が true の場合、フォルダ直下のコンテナのメンバーも続けて列挙します。
func (t *Tree) List(p string, expand bool) ([]Listing, error) {
	loc, err := t.Locate(p)
	if err != nil {
		return nil, err
	}
	n := loc.Node
	switch {
	case loc.IsMember():
		data, err := t.Bytes(loc)
		if err != nil {
			return nil, err
		}
		return []Listing{{Name: fmt.Sprintf("%s:%d", n.Name, loc.Member), Path: loc.Path(), Kind: KindFile, Size: len(data)}}, nil
	case n.Kind == KindContainer:
		return t.members(n)
	case n.Kind == KindFile:
		return []Listing{t.listing(n)}, nil
	}
	var out []Listing
	for _, child := range n.Children {
		out = append(out, t.listing(child))
		if expand && child.Kind == KindContainer {
			members, err := t.members(child)
			if err != nil {
				continue
			}
			out = append(out, members...)
		}
	}
	return out, nil
}

func (t *Tree) listing(n *Node) Listing {
	l := Listing{Name: n.Name, Path: n.Path, Kind: n.Kind}
	switch n.Kind {
	case KindFolder:
		l.Members = len(n.Children)
	case KindFile, KindContainer:
		if data, err := t.FileBytes(n); err == nil {
			l.Size = len(data)
		}
		if n.Kind == KindContainer {
			if c, err := t.Container(n); err == nil {
				l.Members = c.Len()
			}
		}
	}
	return l
}

func (t *Tree) members(n *Node) ([]Listing, error) {
	c, err := t.Container(n)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, c.Len())
	for _, e := range c.Entries() {
		out = append(out, Listing{
			Name: fmt.Sprintf("%s:%d", n.Name, e.Index),
			Path: MemberPath(n.Path, e.Index),
			Kind: KindFile,
			Size: e.Length,
		})
	}
	return out, nil
}

// Walk はツリーを深さ優先でたどります。fn がエラーを返すと中断します
func (t *Tree) Walk(fn func(*Node) error) error {
	var walk func(n *Node) error
	walk = func(n *Node) error {
		for _, child := range n.Children {
			if err := fn(child); err != nil {
				return err
			}
			if child.Kind == KindFolder {
				if err := walk(child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(t.root)
}

// Stats はファイル数とコンテナ数を集計します
func (t *Tree) Stats() Stats {
	st := Stats{ImageSize: len(t.image)}
	_ = t.Walk(func(n *Node) error {
		switch n.Kind {
		case KindFile:
			st.Files++
		case KindContainer:
			st.Files++
			st.Containers++
			if c, err := t.Container(n); err == nil {
				st.Members += c.Len()
			}
		}
		return nil
	})
	return st
}
