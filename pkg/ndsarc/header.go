package ndsarc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
)

// Platform はイメージの種類です
type Platform int

const (
	PlatformUnknown Platform = iota
	PlatformNDS
	PlatformGBA
	PlatformGB
)

// String はプラットフォーム名を返します
func (p Platform) String() string {
	switch p {
	case PlatformNDS:
		return "nds"
	case PlatformGBA:
		return "gba"
	case PlatformGB:
		return "gb"
	}
	return "unknown"
}

// MarshalText はプラットフォーム名をテキストとして返します
func (p Platform) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

const (
	ndsHeaderSize     = 0x200
	ndsLogoCRCOffset  = 0x15C
	ndsHeaderCRCOff   = 0x15E
	ndsLogoCRC        = 0xCF56
	ndsCapacityOffset = 0x14
	ndsUsedSizeOffset = 0x80
	ndsBannerOffset   = 0x68
	bannerTitleOffset = 0x340
	bannerTitleSize   = 0x100

	gbaTitleOffset = 0xA0
	gbaFixedOffset = 0xB2
	gbaFixedValue  = 0x96
	gbTitleOffset  = 0x134
	gbLogoOffset   = 0x104
)

var gbLogoPrefix = []byte{0xCE, 0xED, 0x66, 0x66}

// regionNames はゲームコード4文字目から地域名への対応です
var regionNames = map[byte]string{
	'E': "US",
	'P': "EU",
	'J': "JP",
	'K': "KR",
	'D': "DE",
	'F': "FR",
	'S': "ES",
	'I': "IT",
	'O': "INT",
}

// Section はイメージ内の領域です
type Section struct {
	Offset uint32
	Size   uint32
}

// End は領域の終端を返します
func (s Section) End() uint64 {
	return uint64(s.Offset) + uint64(s.Size)
}

// Header はイメージのヘッダー情報です
type Header struct {
	Platform    Platform `json:"platform"`
	Title       string   `json:"title"`
	GameCode    string   `json:"game_code"`
	Region      string   `json:"region"`
	RegionChar  string   `json:"region_char"`
	BannerTitle string   `json:"banner_title,omitempty"`

	ARM9         Section `json:"-"`
	ARM7         Section `json:"-"`
	FNT          Section `json:"-"`
	FAT          Section `json:"-"`
	OVT9         Section `json:"-"`
	OVT7         Section `json:"-"`
	BannerOffset uint32  `json:"-"`
	UsedSize     uint32  `json:"used_size,omitempty"`
	HeaderCRC    uint16  `json:"-"`
}

// ShortCode はゲームコードの先頭3文字を返します。地域をまたいで同じゲームを識別します
func (h Header) ShortCode() string {
	if len(h.GameCode) >= 3 {
		return h.GameCode[:3]
	}
	return h.GameCode
}

// DisplayTitle はバナーの英語タイトルがあればそれを、無ければヘッダーのタイトルを返します
func (h Header) DisplayTitle() string {
	if strings.IndexFunc(h.BannerTitle, unicode.IsLetter) >= 0 {
		return h.BannerTitle
	}
	return h.Title
}

// DetectPlatform はイメージの内容からプラットフォームを判定します
func DetectPlatform(image []byte) Platform {
	switch {
	case len(image) >= ndsHeaderSize && binary.LittleEndian.Uint16(image[ndsLogoCRCOffset:]) == ndsLogoCRC:
		return PlatformNDS
	case len(image) >= 0xC0 && image[gbaFixedOffset] == gbaFixedValue:
		return PlatformGBA
	case len(image) >= 0x150 && bytes.Equal(image[gbLogoOffset:gbLogoOffset+4], gbLogoPrefix):
		return PlatformGB
	}
	return PlatformUnknown
}

// ParseHeader はイメージのヘッダーを読み込みます
func ParseHeader(image []byte) (Header, error) {
	switch DetectPlatform(image) {
	case PlatformNDS:
		return parseNDSHeader(image)
	case PlatformGBA:
		h := Header{Platform: PlatformGBA}
		h.Title = asciiField(image[gbaTitleOffset : gbaTitleOffset+12])
		h.setCode(asciiField(image[gbaTitleOffset+12 : gbaTitleOffset+16]))
		return h, nil
	case PlatformGB:
		h := Header{Platform: PlatformGB}
		h.Title = asciiField(image[gbTitleOffset : gbTitleOffset+16])
		h.GameCode = h.Title
		if len(h.GameCode) > 4 {
			h.GameCode = h.GameCode[:4]
		}
		h.RegionChar, h.Region = "E", "US"
		return h, nil
	}
	return Header{}, fmt.Errorf("%w: unrecognized image header", ErrCorruptArchive)
}

func parseNDSHeader(image []byte) (Header, error) {
	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(image[off:]) }
	h := Header{
		Platform:     PlatformNDS,
		Title:        asciiField(image[0x00:0x0C]),
		ARM9:         Section{u32(0x20), u32(0x2C)},
		ARM7:         Section{u32(0x30), u32(0x3C)},
		FNT:          Section{u32(0x40), u32(0x44)},
		FAT:          Section{u32(0x48), u32(0x4C)},
		OVT9:         Section{u32(0x50), u32(0x54)},
		OVT7:         Section{u32(0x58), u32(0x5C)},
		BannerOffset: u32(ndsBannerOffset),
		UsedSize:     u32(ndsUsedSizeOffset),
		HeaderCRC:    binary.LittleEndian.Uint16(image[ndsHeaderCRCOff:]),
	}
	h.setCode(asciiField(image[0x0C:0x10]))

	size := uint64(len(image))
	for name, s := range map[string]Section{"arm9": h.ARM9, "arm7": h.ARM7, "fnt": h.FNT, "fat": h.FAT, "ovt9": h.OVT9, "ovt7": h.OVT7} {
		if s.End() > size {
			return Header{}, fmt.Errorf("%w: %s section 0x%X+0x%X exceeds image size 0x%X", ErrCorruptArchive, name, s.Offset, s.Size, size)
		}
	}
	if h.BannerOffset != 0 && uint64(h.BannerOffset)+bannerTitleOffset+bannerTitleSize <= size {
		h.BannerTitle = bannerTitle(image[h.BannerOffset+bannerTitleOffset : h.BannerOffset+bannerTitleOffset+bannerTitleSize])
	}
	return h, nil
}

func (h *Header) setCode(code string) {
	h.GameCode = code
	h.RegionChar = "E"
	if len(code) >= 4 {
		h.RegionChar = code[3:4]
	}
	region, ok := regionNames[h.RegionChar[0]]
	if !ok {
		region = "INT"
	}
	h.Region = region
}

// bannerTitle はバナーの英語タイトルの先頭2行を1行にまとめます
func bannerTitle(raw []byte) string {
	decoded, err := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	title, _, _ := strings.Cut(string(decoded), "\x00")
	lines := strings.Split(title, "\n")
	if len(lines) >= 2 {
		return strings.TrimSpace(lines[0] + " " + lines[1])
	}
	return strings.TrimSpace(lines[0])
}

func asciiField(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 0x20 && c < 0x7F {
			sb.WriteByte(c)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}
