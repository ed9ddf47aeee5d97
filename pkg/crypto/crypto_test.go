package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMultiplier = 0x2983

func TestEntryKey(t *testing.T) {
	tests := []struct {
		name  string
		state CipherState
		index int
		want  uint16
	}{
		{"第4世代 エントリ0", NewGen4State(), 0, 0x1BD3},
		{"第4世代 エントリ1", NewGen4State(), 1, 0x37A6},
		{"第5世代 エントリ0", NewGen5State(testMultiplier), 0, uint16(3 * testMultiplier)},
		{"第5世代 エントリ1", NewGen5State(testMultiplier), 1, 0xA60C},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.entryKey(tt.index))
		})
	}
}

func TestKeyAdvance(t *testing.T) {
	assert.Equal(t, uint16(0x6510), NewGen4State().next(0x1BD3))
	assert.Equal(t, uint16(0x0009), NewGen5State(1).next(0x2001))
	assert.Equal(t, uint16(0xFFFF), NewGen5State(1).next(0xFFFF))
}

func TestEncodeEntry_KnownGen4Vector(t *testing.T) {
	raw, err := EncodeEntry("A", 0, NewGen4State(), false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xF8, 0x1A, 0xEF, 0x9A}, raw)

	got, err := DecodeEntry(raw, 0, NewGen4State())
	require.NoError(t, err)
	assert.Equal(t, "A", got)
}

var gen4Samples = []string{
	"",
	"Bulbasaur",
	"Hello, world! 123",
	"ポケモン　ずかん",
	"ÀÉÎÕÜ àéîõü ×÷",
	"line one\nline two\rscroll\fnext",
	"You got [VAR 0100(0000)]!",
	"[VAR 0132(0001,0002,0003)] and [VAR 0200]",
	"unknown \\x0000 code",
	"♂♀…“quoted”",
	"PKMN",
}

var gen5Samples = []string{
	"",
	"Bulbasaur",
	"Pokémon Center",
	"line one\nline two",
	"[VAR 0101(0000)] obtained [VAR 0100(0001,0002)]!",
	`back\\slash and \[bracket]`,
	"control \\x0001 and \\xF123",
	"日本語のテキスト",
	"emoji 😀 outside the BMP",
	"Mr. Mime and the Poké Ball",
}

func TestEntryRoundTrip(t *testing.T) {
	states := map[string]struct {
		state   CipherState
		samples []string
	}{
		"第4世代": {NewGen4State(), gen4Samples},
		"第5世代": {NewGen5State(testMultiplier), gen5Samples},
	}
	for name, tc := range states {
		for i, s := range tc.samples {
			t.Run(name+"/"+s, func(t *testing.T) {
				raw, err := EncodeEntry(s, i, tc.state, false)
				require.NoError(t, err)
				got, err := DecodeEntry(raw, i, tc.state)
				require.NoError(t, err)
				assert.Equal(t, s, got)
				assert.False(t, IsPacked(raw, i, tc.state))
			})
		}
	}
}

func TestPackedEntryRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		state CipherState
		text  string
	}{
		{"第4世代 英字", NewGen4State(), "Bulbasaur"},
		{"第4世代 かな", NewGen4State(), "ポケモン"},
		{"第4世代 記号", NewGen4State(), "Hi! ♂♀ é"},
		{"第4世代 空", NewGen4State(), ""},
		{"第5世代 英字", NewGen5State(testMultiplier), "Bulbasaur"},
		{"第5世代 ラテン拡張", NewGen5State(testMultiplier), "Pokémon Ǿ"},
		{"第5世代 エスケープ", NewGen5State(testMultiplier), `\x0001\\\[`},
		{"第5世代 空", NewGen5State(testMultiplier), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := EncodeEntry(tt.text, 7, tt.state, true)
			require.NoError(t, err)
			assert.True(t, IsPacked(raw, 7, tt.state))

			got, err := DecodeEntry(raw, 7, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)
		})
	}
}

func TestPackedUsesGenerationTable(t *testing.T) {
	// 第4世代の9ビット形式は 0x012B を 'A' として扱う
	units := append([]uint16{packedMarker}, packSymbols([]uint16{0x012B, 0x0145})...)
	state := NewGen4State()
	raw := unitsToBytes(state.xorUnits(units, 0))
	got, err := DecodeEntry(raw, 0, state)
	require.NoError(t, err)
	assert.Equal(t, "Aa", got)
}

func TestEncodeEntry_Unencodable(t *testing.T) {
	tests := []struct {
		name   string
		state  CipherState
		text   string
		packed bool
	}{
		{"第4世代に無い文字", NewGen4State(), "漢字", false},
		{"第4世代の角括弧", NewGen4State(), "[oops", false},
		{"不明な記法", NewGen5State(1), "[WHAT 0000]", false},
		{"短いエスケープ", NewGen5State(1), `\x12`, false},
		{"未知のエスケープ", NewGen5State(1), `\q`, false},
		{"末尾のバックスラッシュ", NewGen5State(1), `abc\`, false},
		{"先頭の9ビット形式マーカー", NewGen5State(1), `\xF100abc`, false},
		{"終端コード", NewGen5State(1), `ab\xFFFFcd`, false},
		{"第5世代の置換コード", NewGen5State(1), "⑧", false},
		{"第5世代の制御文字", NewGen5State(1), "tab\there", false},
		{"9ビットに収まらない文字", NewGen5State(1), "日本", true},
		{"9ビット形式の制御コード", NewGen5State(1), "[VAR 0100]", true},
		{"9ビット形式の改行", NewGen4State(), "a\nb", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeEntry(tt.text, 0, tt.state, tt.packed)
			assert.ErrorIs(t, err, ErrUnencodable)
		})
	}
}

func TestDecodeEntry_TruncatedControl(t *testing.T) {
	state := NewGen5State(testMultiplier)
	units := []uint16{'A', gen5Control, 0x0100}
	raw := unitsToBytes(state.xorUnits(units, 2))
	got, err := DecodeEntry(raw, 2, state)
	require.NoError(t, err)
	assert.Equal(t, `A\xF000Ā`, got)
}

func TestDecodeEntry_Errors(t *testing.T) {
	_, err := DecodeEntry([]byte{1, 2, 3}, 0, NewGen4State())
	assert.ErrorIs(t, err, ErrInvalidTextFile)

	_, err = DecodeEntry([]byte{1, 2}, 0, CipherState{})
	assert.Error(t, err)
}

func TestVariantForGeneration(t *testing.T) {
	v, err := VariantForGeneration(4)
	require.NoError(t, err)
	assert.Equal(t, VariantGen4, v)
	v, err = VariantForGeneration(5)
	require.NoError(t, err)
	assert.Equal(t, VariantGen5, v)
	_, err = VariantForGeneration(3)
	assert.Error(t, err)
}
