package session

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Creative-Genius2/LinkPlay/internal/testutil"
	"github.com/Creative-Genius2/LinkPlay/pkg/compress"
)

const testMultiplier = 0x2983

var (
	testMoves       = []string{"-----", "Pound", "Karate Chop", "Double Slap", "Comet Punch", "Mega Punch"}
	testSpecies     = []string{"-----", "Bulbasaur", "Ivysaur", "Venusaur", "Charmander"}
	testClasses     = []string{"Pkmn Trainer", "Youngster", "Lass", "School Kid"}
	testLocations   = []string{"Mystery Zone", "Route 1"}
	testTypes       = []string{"Normal", "Fighting", "Flying", "Poison"}
	testMoveRecord  = moveRecord()
	testTrainerMons = trainerPokemon()
)

func trainerNames() []string {
	names := []string{"-", "Cheren", "Bianca"}
	for i := len(names); i < 110; i++ {
		names = append(names, fmt.Sprintf("Trainer %d", i))
	}
	return names
}

func abilities() ([]string, []string) {
	names := make([]string, 23)
	desc := make([]string, 23)
	for i := range names {
		names[i] = fmt.Sprintf("Ability %d", i)
		desc[i] = fmt.Sprintf("Describes what ability number %d does in battle.", i)
	}
	names[1], names[22] = "Stench", "Intimidate"
	return names, desc
}

// gen5Personal は特性 1/2/3 を持つ第5世代の個体データです
func gen5Personal() []byte {
	raw := make([]byte, 76)
	copy(raw, []byte{45, 49, 49, 45, 65, 65, 3, 3, 45})
	raw[0x18], raw[0x19], raw[0x1A] = 1, 2, 22
	return raw
}

func trainerData() []byte {
	raw := make([]byte, 20)
	raw[0], raw[1], raw[3] = 0x03, 1, 2
	raw[17] = 10
	return raw
}

// trainerPokemon は技と持ち物を持つ2体分のデータです。2体目の種族番号4は位置22にあります
func trainerPokemon() []byte {
	raw := make([]byte, 36)
	raw[0], raw[1], raw[2] = 255, 0x12, 5
	binary.LittleEndian.PutUint16(raw[4:], 1)
	binary.LittleEndian.PutUint16(raw[10:], 1)
	binary.LittleEndian.PutUint16(raw[12:], 5)
	raw[18+2] = 50
	binary.LittleEndian.PutUint16(raw[18+4:], 4)
	return raw
}

func moveRecord() []byte {
	raw := make([]byte, 36)
	raw[0], raw[2], raw[3], raw[4], raw[5] = 0, 1, 40, 100, 35
	return raw
}

// gen5ROM は Black 2 の配置を持つ合成ROMです
func gen5ROM(t testing.TB) testutil.ROM {
	t.Helper()
	lz, err := compress.Compress(testMoveRecord, compress.FormatLZ10)
	require.NoError(t, err)
	names, desc := abilities()
	return testutil.ROM{
		Title:       "POKEMON B2",
		Code:        "IREO",
		BannerTitle: "Pokémon Black Version 2\nNintendo",
		Files: []testutil.ROMFile{
			{Path: "a/0/0/2", Data: testutil.BuildNARC(
				testutil.Gen5Text(t, testMultiplier, testMoves...),
				testutil.Gen5Text(t, testMultiplier, testSpecies...),
				testutil.Gen5Text(t, testMultiplier, testClasses...),
				testutil.Gen5Text(t, testMultiplier, trainerNames()...),
				testutil.Gen5Text(t, testMultiplier, names...),
				testutil.Gen5Text(t, testMultiplier, desc...),
				testutil.Gen5Text(t, testMultiplier, testLocations...),
				testutil.Gen5Text(t, testMultiplier, testTypes...),
			)},
			{Path: "a/0/1/6", Data: testutil.BuildNARC(make([]byte, 76), gen5Personal())},
			{Path: "a/0/2/1", Data: testutil.BuildNARC(make([]byte, 36), lz)},
			{Path: "a/0/9/1", Data: testutil.BuildNARC(make([]byte, 20), trainerData())},
			{Path: "a/0/9/2", Data: testutil.BuildNARC(nil, testTrainerMons)},
			{Path: "data/readme.txt", Data: []byte("hello, world")},
			{Path: "data/other.txt", Data: []byte("hello, World!")},
		},
	}
}

func openGen5(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := Open(testutil.BuildROM(t, gen5ROM(t)), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func intPtr(n int) *int {
	return &n
}
