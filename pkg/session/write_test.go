package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Creative-Genius2/LinkPlay/internal/testutil"
	"github.com/Creative-Genius2/LinkPlay/pkg/compress"
	"github.com/Creative-Genius2/LinkPlay/pkg/ndsarc"
)

func TestSession_Write(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		offset *int
		want   string
	}{
		{"全体を置き換え", "bye", nil, "bye"},
		{"先頭を上書き", "HELLO", intPtr(0), "HELLO, world"},
		{"末尾まで上書き", "there", intPtr(7), "hello, there"},
		{"長さ0", "", intPtr(12), "hello, world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openGen5(t)
			require.NoError(t, s.Write("data/readme.txt", []byte(tt.data), tt.offset))
			res, err := s.Read("data/readme.txt", ReadOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(res.Data))
			assert.Equal(t, []string{"data/readme.txt"}, s.Modified())
		})
	}
}

func TestSession_WriteLastWins(t *testing.T) {
	s := openGen5(t)
	require.NoError(t, s.Write("data/readme.txt", []byte("AAAA"), intPtr(0)))
	require.NoError(t, s.Write("data/readme.txt", []byte("BB"), intPtr(2)))
	res, err := s.Read("data/readme.txt", ReadOptions{Length: 5})
	require.NoError(t, err)
	assert.Equal(t, "AABBo", string(res.Data))
}

func TestSession_WriteErrors(t *testing.T) {
	s := openGen5(t)
	tests := []struct {
		name   string
		path   string
		data   []byte
		offset *int
		want   error
	}{
		{"末尾を超える", "data/readme.txt", []byte("abc"), intPtr(10), ndsarc.ErrOutOfBounds},
		{"負の位置", "data/readme.txt", []byte("a"), intPtr(-1), ndsarc.ErrOutOfBounds},
		{"フォルダ", "data", []byte("a"), nil, ndsarc.ErrNotFound},
		{"存在しないパス", "data/none", []byte("a"), nil, ndsarc.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Write(tt.path, tt.data, tt.offset)
			assert.ErrorIs(t, err, tt.want)
			var pe *PathError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "write", pe.Op)
			if tt.offset != nil {
				assert.Equal(t, *tt.offset, pe.Offset)
			}
		})
	}
	assert.Empty(t, s.Modified())
}

func TestSession_WriteMemberDecodes(t *testing.T) {
	s := openGen5(t)
	require.NoError(t, s.Write("a/0/2/1:1", []byte{90}, intPtr(3)))

	res, err := s.Read("a/0/2/1:1", ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 90, res.Decoded["power"])
	assert.Equal(t, compress.FormatLZ10, res.Compression)

	raw, err := s.Read("a/0/2/1:1", ReadOptions{Raw: true})
	require.NoError(t, err)
	assert.Equal(t, compress.FormatLZ10, raw.Compression)
	back, err := compress.Decompress(raw.Data)
	require.NoError(t, err)
	assert.Equal(t, res.Data, back)
}

func TestSession_WriteContainerDropsMembers(t *testing.T) {
	s := openGen5(t)
	require.NoError(t, s.Write("a/0/9/2:1", []byte{1, 2}, intPtr(0)))
	require.NoError(t, s.Write("a/0/9/2", testutil.BuildNARC([]byte("x"), []byte("yz"), []byte("new")), nil))
	assert.Equal(t, []string{"a/0/9/2"}, s.Modified())

	res, err := s.Read("a/0/9/2:2", ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "new", string(res.Data))
}

func TestSession_Save(t *testing.T) {
	s := openGen5(t)
	require.NoError(t, s.Write("data/readme.txt", []byte("a much longer replacement text than before"), nil))
	require.NoError(t, s.Write("a/0/2/1:1", []byte{90}, intPtr(3)))
	require.NoError(t, s.Write("a/0/1/6:1", []byte{100}, intPtr(0)))

	image, err := s.Save()
	require.NoError(t, err)
	assert.Empty(t, s.Modified())

	check := func(t *testing.T, s *Session) {
		res, err := s.Read("data/readme.txt", ReadOptions{})
		require.NoError(t, err)
		assert.Equal(t, "a much longer replacement text than before", string(res.Data))

		res, err = s.Read("a/0/2/1:1", ReadOptions{})
		require.NoError(t, err)
		assert.Equal(t, compress.FormatLZ10, res.Compression)
		assert.Equal(t, 90, res.Decoded["power"])

		res, err = s.Read("a/0/1/6:1", ReadOptions{})
		require.NoError(t, err)
		assert.Equal(t, 100, res.Decoded["base_stats"].(map[string]int)["hp"])

		res, err = s.Read("data/other.txt", ReadOptions{})
		require.NoError(t, err)
		assert.Equal(t, "hello, World!", string(res.Data))
	}
	t.Run("同じセッション", func(t *testing.T) { check(t, s) })
	t.Run("開き直したセッション", func(t *testing.T) {
		reopened, err := Open(image)
		require.NoError(t, err)
		check(t, reopened)
	})
}

func TestSession_SaveWithoutEdits(t *testing.T) {
	img := testutil.BuildROM(t, gen5ROM(t))
	s, err := Open(img)
	require.NoError(t, err)
	out, err := s.Save()
	require.NoError(t, err)
	assert.Equal(t, img, out)
}

func TestSession_SaveFailureKeepsOverlay(t *testing.T) {
	s := openGen5(t)
	require.NoError(t, s.Write("arm9.bin", make([]byte, 0x10000), nil))
	_, err := s.Save()
	assert.ErrorIs(t, err, ndsarc.ErrRepack)
	assert.Equal(t, []string{"arm9.bin"}, s.Modified())
}

func TestSession_Discard(t *testing.T) {
	s := openGen5(t)
	require.NoError(t, s.Write("data/readme.txt", []byte("x"), nil))
	s.Discard()
	assert.Empty(t, s.Modified())
	res, err := s.Read("data/readme.txt", ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello, world", string(res.Data))
}

func TestSession_FlatImage(t *testing.T) {
	img := testutil.BuildGBA("POKEMON FIRE", "BPRE", []byte("payload bytes"))
	s, err := Open(img)
	require.NoError(t, err)
	assert.Nil(t, s.Game())

	list, err := s.List("", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ndsarc.ImageName, list[0].Name)

	require.NoError(t, s.Write(ndsarc.ImageName, []byte("PAY"), intPtr(0xC0)))
	out, err := s.Save()
	require.NoError(t, err)
	assert.Equal(t, "PAYload bytes", string(out[0xC0:]))
	assert.Equal(t, "BPRE", s.Header().GameCode)
}

func TestSession_TagLikeRawFile(t *testing.T) {
	raw := []byte{0x10, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00}
	rom := gen5ROM(t)
	rom.Files = append(rom.Files, testutil.ROMFile{Path: "data/tagged.bin", Data: raw})
	s, err := Open(testutil.BuildROM(t, rom))
	require.NoError(t, err)
	defer s.Close()

	res, err := s.Read("data/tagged.bin", ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, compress.FormatNone, res.Compression)
	assert.Equal(t, raw, res.Data)

	require.NoError(t, s.Write("data/tagged.bin", raw, nil))
	image, err := s.Save()
	require.NoError(t, err)

	reopened, err := Open(image)
	require.NoError(t, err)
	defer reopened.Close()
	res, err = reopened.Read("data/tagged.bin", ReadOptions{Raw: true})
	require.NoError(t, err)
	assert.Equal(t, raw, res.Data)
}
