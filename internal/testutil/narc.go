package testutil

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Creative-Genius2/LinkPlay/pkg/crypto"
)

// BuildNARC はメンバーを4バイト境界に揃えたNARCを組み立てます
func BuildNARC(members ...[]byte) []byte {
	var data []byte
	btaf := make([]byte, 12+len(members)*8)
	copy(btaf, "BTAF")
	binary.LittleEndian.PutUint32(btaf[4:], uint32(len(btaf)))
	binary.LittleEndian.PutUint16(btaf[8:], uint16(len(members)))
	for i, m := range members {
		binary.LittleEndian.PutUint32(btaf[12+i*8:], uint32(len(data)))
		binary.LittleEndian.PutUint32(btaf[16+i*8:], uint32(len(data)+len(m)))
		data = append(data, m...)
		for len(data)%4 != 0 {
			data = append(data, 0xFF)
		}
	}
	btnf := []byte{'B', 'T', 'N', 'F', 0x10, 0, 0, 0, 4, 0, 0, 0, 0, 0, 1, 0}

	out := make([]byte, 0x10)
	copy(out, "NARC")
	binary.LittleEndian.PutUint16(out[4:], 0xFFFE)
	binary.LittleEndian.PutUint16(out[6:], 0x0100)
	binary.LittleEndian.PutUint16(out[0x0C:], 0x10)
	binary.LittleEndian.PutUint16(out[0x0E:], 3)
	out = append(out, btaf...)
	out = append(out, btnf...)
	out = append(out, "GMIF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(8+len(data)))
	out = append(out, data...)
	binary.LittleEndian.PutUint32(out[8:], uint32(len(out)))
	return out
}

// Record は little endian の u16 を並べたバイト列を返します
func Record(values ...uint16) []byte {
	b := make([]byte, 0, len(values)*2)
	for _, v := range values {
		b = binary.LittleEndian.AppendUint16(b, v)
	}
	return b
}

// Gen4Text は第4世代の暗号化テキストファイルを作成します
func Gen4Text(t testing.TB, texts ...string) []byte {
	t.Helper()
	b, err := crypto.EncodeFile(texts, crypto.NewGen4State(), 0x1234)
	require.NoError(t, err)
	return b
}

// Gen5Text は第5世代の暗号化テキストファイルを作成します
func Gen5Text(t testing.TB, multiplier uint16, texts ...string) []byte {
	t.Helper()
	b, err := crypto.EncodeFile(texts, crypto.NewGen5State(multiplier), 0)
	require.NoError(t, err)
	return b
}
