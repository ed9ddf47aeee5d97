package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/Creative-Genius2/LinkPlay/internal/testutil"
)

const testROM = "diamond.nds"

var testSpecies = []string{"-----", "Bulbasaur", "Ivysaur", "Venusaur", "Charmander"}

// setupROM はメモリ上のファイルシステムに第4世代の合成ROMを置き、フラグを既定値に戻します
func setupROM(t *testing.T) afero.Fs {
	t.Helper()
	personal := make([]byte, 44)
	copy(personal, []byte{45, 49, 49, 45, 65, 65, 1, 2, 45})
	image := testutil.BuildROM(t, testutil.ROM{
		Title: "POKEMON D",
		Code:  "ADAE",
		Files: []testutil.ROMFile{
			{Path: "msgdata/msg.narc", Data: testutil.BuildNARC(
				testutil.Gen4Text(t, "Hardy nature.", "Lonely nature.", "Brave nature.", "Adamant nature."),
				testutil.Gen4Text(t, testSpecies...),
				testutil.Gen4Text(t, "Normal", "Fighting", "Flying", "Poison"),
			)},
			{Path: "poketool/personal/personal.narc", Data: testutil.BuildNARC(make([]byte, 44), personal)},
			{Path: "data/readme.txt", Data: []byte("hello, world")},
			{Path: "data/other.txt", Data: []byte("hello, World!")},
		},
	})

	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, testROM, image, 0o644))
	orig := fs
	fs = mem
	t.Cleanup(func() { fs = orig })
	resetFlags()
	t.Cleanup(resetFlags)
	return mem
}

func resetFlags() {
	debug, jsonOut, gamesPath = false, false, ""
	lsExpand = false
	catOffset, catLength, catRaw = 0, 0, false
	writeOffset, writeEncoding, writeOut = -1, "hex", ""
	textEntry, textSet, textOut = -1, "", ""
	searchContainer, searchHex, searchName, searchID, searchExact = "", "", "", "", false
}

// captureOutput は fn の実行中に標準出力へ書かれた内容を返します
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.String()
	}()

	fnErr := fn()
	w.Close()
	os.Stdout = orig
	return <-done, fnErr
}

// assertJSON は出力がJSONとして読めることを確認し、読んだ値を返します
func assertJSON(t *testing.T, output string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// assertContains は出力がすべての文字列を含むことを確認します
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
