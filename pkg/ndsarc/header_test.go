package ndsarc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Creative-Genius2/LinkPlay/internal/testutil"
)

func TestParseHeader_NDS(t *testing.T) {
	img := testutil.BuildROM(t, sampleROM())

	h, err := ParseHeader(img)
	require.NoError(t, err)
	assert.Equal(t, PlatformNDS, h.Platform)
	assert.Equal(t, "POKEMON B2", h.Title)
	assert.Equal(t, "IREO", h.GameCode)
	assert.Equal(t, "IRE", h.ShortCode())
	assert.Equal(t, "O", h.RegionChar)
	assert.Equal(t, "INT", h.Region)
	assert.Equal(t, "Pokémon Black Version 2", h.BannerTitle)
	assert.Equal(t, "Pokémon Black Version 2", h.DisplayTitle())
	assert.Equal(t, uint32(len(img)), h.UsedSize)
	assert.Equal(t, CRC16(img[:ndsHeaderCRCOff]), h.HeaderCRC)
}

func TestParseHeader_Region(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"北米", "IRBE", "US"},
		{"欧州", "IRBP", "EU"},
		{"日本", "IRBJ", "JP"},
		{"韓国", "IRBK", "KR"},
		{"ドイツ", "IRBD", "DE"},
		{"フランス", "IRBF", "FR"},
		{"スペイン", "IRBS", "ES"},
		{"イタリア", "IRBI", "IT"},
		{"未知の地域", "IRBZ", "INT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testutil.BuildROM(t, testutil.ROM{Code: tt.code})
			h, err := ParseHeader(img)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Region)
		})
	}
}

func TestParseHeader_NoBannerTitle(t *testing.T) {
	img := testutil.BuildROM(t, testutil.ROM{Title: "PLAIN"})
	h, err := ParseHeader(img)
	require.NoError(t, err)
	assert.Empty(t, h.BannerTitle)
	assert.Equal(t, "PLAIN", h.DisplayTitle())
}

func TestParseHeader_OtherPlatforms(t *testing.T) {
	tests := []struct {
		name     string
		image    []byte
		platform Platform
		title    string
		code     string
	}{
		{"GBA", testutil.BuildGBA("POKEMON EMER", "BPEE", make([]byte, 0x100)), PlatformGBA, "POKEMON EMER", "BPEE"},
		{"GB", testutil.BuildGB("POKEMON RED", make([]byte, 0x100)), PlatformGB, "POKEMON RED", "POKE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHeader(tt.image)
			require.NoError(t, err)
			assert.Equal(t, tt.platform, h.Platform)
			assert.Equal(t, tt.title, h.Title)
			assert.Equal(t, tt.code, h.GameCode)
		})
	}
}

func TestParseHeader_Errors(t *testing.T) {
	t.Run("不明な形式", func(t *testing.T) {
		_, err := ParseHeader(make([]byte, 0x400))
		assert.ErrorIs(t, err, ErrCorruptArchive)
	})
	t.Run("セクションがイメージ外", func(t *testing.T) {
		img := testutil.BuildROM(t, sampleROM())
		binary.LittleEndian.PutUint32(img[0x4C:], uint32(len(img)))
		_, err := ParseHeader(img)
		assert.ErrorIs(t, err, ErrCorruptArchive)
	})
}

func TestDetectPlatform(t *testing.T) {
	assert.Equal(t, PlatformNDS, DetectPlatform(testutil.BuildROM(t, testutil.ROM{})))
	assert.Equal(t, PlatformGBA, DetectPlatform(testutil.BuildGBA("X", "AXVE", nil)))
	assert.Equal(t, PlatformGB, DetectPlatform(testutil.BuildGB("X", nil)))
	assert.Equal(t, PlatformUnknown, DetectPlatform([]byte("short")))
}
