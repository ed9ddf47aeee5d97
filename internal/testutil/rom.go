// Package testutil はテスト用の合成ROMイメージ、NARC、テキストファイルを組み立てます。
package testutil

import (
	"encoding/binary"
	"path"
	"sort"
	"strings"
	"testing"

	"golang.org/x/text/encoding/unicode"
)

const (
	headerSize   = 0x200
	fileAlign    = 0x200
	bannerSize   = 0x840
	logoCRC      = 0xCF56
	logoCRCOff   = 0x15C
	headerCRCOff = 0x15E
	overlaySize  = 0x20
	dirIDBase    = 0xF000
	baseCapacity = 0x20000
)

// ROMFile は合成ROMに格納するファイルです
type ROMFile struct {
	Path string
	Data []byte
}

// ROM は合成NDSイメージの内容です。
// ファイルIDはオーバーレイに先頭から割り当て、その後にフォルダ順で Files に割り当てます。
type ROM struct {
	Title       string
	Code        string
	BannerTitle string
	ARM9        []byte
	ARM7        []byte
	Overlays9   [][]byte
	Files       []ROMFile
}

type fntDir struct {
	name   string
	parent int
	files  []ROMFile
	subs   []int
}

// BuildROM は NDS イメージを組み立てます。各ファイルは0x200境界に配置します
func BuildROM(t testing.TB, r ROM) []byte {
	t.Helper()
	if r.Title == "" {
		r.Title = "TESTROM"
	}
	if r.Code == "" {
		r.Code = "TSTE"
	}
	if r.ARM9 == nil {
		r.ARM9 = fillPattern(0x400, 9)
	}
	if r.ARM7 == nil {
		r.ARM7 = fillPattern(0x200, 7)
	}

	dirs := buildDirs(r.Files)
	order := fileOrder(dirs)
	firstID := len(r.Overlays9)
	fnt := buildFNT(dirs, firstID)

	img := make([]byte, headerSize)
	copy(img[0x00:0x0C], r.Title)
	copy(img[0x0C:0x10], r.Code)

	place := func(data []byte) (uint32, uint32) {
		img = pad(img, fileAlign)
		start := uint32(len(img))
		img = append(img, data...)
		return start, uint32(len(img))
	}

	arm9Start, _ := place(r.ARM9)
	putSection(img, 0x20, arm9Start, len(r.ARM9))
	arm7Start, _ := place(r.ARM7)
	putSection(img, 0x30, arm7Start, len(r.ARM7))

	fntStart, _ := place(fnt)
	putSection(img, 0x40, fntStart, len(fnt))

	total := len(r.Overlays9) + len(order)
	fatStart, _ := place(make([]byte, total*8))
	putSection(img, 0x48, fatStart, total*8)

	ovtStart := uint32(0)
	if len(r.Overlays9) > 0 {
		ovt := make([]byte, len(r.Overlays9)*overlaySize)
		for i, ov := range r.Overlays9 {
			e := ovt[i*overlaySize:]
			binary.LittleEndian.PutUint32(e[0x00:], uint32(i))
			binary.LittleEndian.PutUint32(e[0x08:], uint32(len(ov)))
			binary.LittleEndian.PutUint32(e[0x18:], uint32(i))
			binary.LittleEndian.PutUint32(e[0x1C:], uint32(len(ov))|1<<24)
		}
		ovtStart, _ = place(ovt)
		putSection(img, 0x50, ovtStart, len(ovt))
	}

	bannerStart, _ := place(buildBanner(r.BannerTitle))
	binary.LittleEndian.PutUint32(img[0x68:], bannerStart)

	setFAT := func(id int, start, end uint32) {
		pos := int(fatStart) + id*8
		binary.LittleEndian.PutUint32(img[pos:], start)
		binary.LittleEndian.PutUint32(img[pos+4:], end)
	}
	for i, ov := range r.Overlays9 {
		start, end := place(ov)
		setFAT(i, start, end)
	}
	for i, f := range order {
		start, end := place(f.Data)
		setFAT(firstID+i, start, end)
	}

	binary.LittleEndian.PutUint32(img[0x80:], uint32(len(img)))
	capacity := byte(0)
	for baseCapacity<<capacity < len(img) {
		capacity++
	}
	img[0x14] = capacity
	binary.LittleEndian.PutUint16(img[logoCRCOff:], logoCRC)
	binary.LittleEndian.PutUint16(img[headerCRCOff:], CRC16(img[:headerCRCOff]))
	return img
}

// FileIDs は BuildROM が割り当てるファイルIDをパスごとに返します
func FileIDs(r ROM) map[string]int {
	ids := map[string]int{}
	for i, f := range fileOrder(buildDirs(r.Files)) {
		ids[path.Clean(f.Path)] = len(r.Overlays9) + i
	}
	return ids
}

func buildDirs(files []ROMFile) []*fntDir {
	dirs := []*fntDir{{parent: -1}}
	index := map[string]int{"": 0}
	var ensure func(p string) int
	ensure = func(p string) int {
		if i, ok := index[p]; ok {
			return i
		}
		parent := ensure(parentDir(p))
		dirs = append(dirs, &fntDir{name: path.Base(p), parent: parent})
		i := len(dirs) - 1
		dirs[parent].subs = append(dirs[parent].subs, i)
		index[p] = i
		return i
	}
	for _, f := range files {
		d := ensure(parentDir(path.Clean(f.Path)))
		dirs[d].files = append(dirs[d].files, f)
	}
	for _, d := range dirs {
		sort.SliceStable(d.subs, func(a, b int) bool { return dirs[d.subs[a]].name < dirs[d.subs[b]].name })
	}
	return dirs
}

func parentDir(p string) string {
	d := path.Dir(p)
	if d == "." || d == "/" {
		return ""
	}
	return d
}

// fileOrder はディレクトリ番号順にファイルを並べます。FNTの連番と一致します
func fileOrder(dirs []*fntDir) []ROMFile {
	var out []ROMFile
	for _, d := range dirs {
		out = append(out, d.files...)
	}
	return out
}

func buildFNT(dirs []*fntDir, firstID int) []byte {
	main := make([]byte, len(dirs)*8)
	var subs []byte
	id := firstID
	for i, d := range dirs {
		off := len(main) + len(subs)
		binary.LittleEndian.PutUint32(main[i*8:], uint32(off))
		binary.LittleEndian.PutUint16(main[i*8+4:], uint16(id))
		if i == 0 {
			binary.LittleEndian.PutUint16(main[6:], uint16(len(dirs)))
		} else {
			binary.LittleEndian.PutUint16(main[i*8+6:], uint16(dirIDBase+d.parent))
		}
		for _, f := range d.files {
			name := path.Base(f.Path)
			subs = append(subs, byte(len(name)))
			subs = append(subs, name...)
			id++
		}
		for _, s := range d.subs {
			name := dirs[s].name
			subs = append(subs, byte(0x80|len(name)))
			subs = append(subs, name...)
			subs = binary.LittleEndian.AppendUint16(subs, uint16(dirIDBase+s))
		}
		subs = append(subs, 0)
	}
	return append(main, subs...)
}

func buildBanner(title string) []byte {
	b := make([]byte, bannerSize)
	binary.LittleEndian.PutUint16(b, 1)
	if title == "" {
		return b
	}
	enc, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(title))
	if err != nil {
		panic(err)
	}
	copy(b[0x340:0x440], enc)
	return b
}

// putSection はヘッダーに領域の位置と大きさを書き込みます。
// ARM9/ARM7 は位置の後にエントリとロード先を挟むため、大きさは +0x0C にあります
func putSection(img []byte, off int, start uint32, size int) {
	sizeOff := off + 4
	if off == 0x20 || off == 0x30 {
		sizeOff = off + 0x0C
	}
	binary.LittleEndian.PutUint32(img[off:], start)
	binary.LittleEndian.PutUint32(img[sizeOff:], uint32(size))
}

func pad(b []byte, align int) []byte {
	for len(b)%align != 0 {
		b = append(b, 0xFF)
	}
	return b
}

func fillPattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}

// CRC16 はヘッダーCRCと同じ多項式で計算します
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// BuildGBA はGBAイメージを組み立てます
func BuildGBA(title, code string, payload []byte) []byte {
	img := make([]byte, 0xC0, 0xC0+len(payload))
	copy(img[0xA0:0xAC], title)
	copy(img[0xAC:0xB0], code)
	img[0xB2] = 0x96
	return append(img, payload...)
}

// BuildGB はGBイメージを組み立てます
func BuildGB(title string, payload []byte) []byte {
	img := make([]byte, 0x150, 0x150+len(payload))
	copy(img[0x104:], []byte{0xCE, 0xED, 0x66, 0x66})
	copy(img[0x134:0x144], strings.ToUpper(title))
	return append(img, payload...)
}
