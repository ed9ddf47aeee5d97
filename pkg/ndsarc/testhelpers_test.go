package ndsarc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Creative-Genius2/LinkPlay/internal/testutil"
)

func sampleROM() testutil.ROM {
	return testutil.ROM{
		Title:       "POKEMON B2",
		Code:        "IREO",
		BannerTitle: "Pokémon Black\nVersion 2\nNintendo",
		Overlays9:   [][]byte{{0x01, 0x02, 0x03, 0x04}, make([]byte, 0x30)},
		Files: []testutil.ROMFile{
			{Path: "a/0/0/2", Data: testutil.BuildNARC([]byte("one"), []byte("second"), nil)},
			{Path: "a/0/1/6", Data: testutil.BuildNARC(make([]byte, 76), make([]byte, 76))},
			{Path: "data/readme.txt", Data: []byte("hello, world")},
			{Path: "data/empty.bin", Data: nil},
			{Path: "sound.sdat", Data: make([]byte, 0x40)},
		},
	}
}

func openSample(t *testing.T) (*Tree, []byte) {
	t.Helper()
	img := testutil.BuildROM(t, sampleROM())
	tree, err := Open(img)
	require.NoError(t, err)
	return tree, img
}
