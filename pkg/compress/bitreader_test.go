package compress

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitReader_MSBFirstWithinWord(t *testing.T) {
	// 0x80000001 (LE) -> 先頭ビット1、続いて30個の0、最後に1
	br := NewBitReader([]byte{0x01, 0x00, 0x00, 0x80})
	var bits []uint32
	for i := 0; i < 32; i++ {
		b, err := br.ReadBit()
		require.NoError(t, err)
		bits = append(bits, b)
	}
	assert.Equal(t, uint32(1), bits[0])
	assert.Equal(t, uint32(1), bits[31])
	for _, b := range bits[1:31] {
		assert.Equal(t, uint32(0), b)
	}
	assert.Equal(t, 4, br.Offset())

	_, err := br.ReadBit()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBitWriter_RoundTrip(t *testing.T) {
	pattern := []uint32{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 1}
	bw := &BitWriter{}
	for i := 0; i < 5; i++ {
		for _, b := range pattern {
			bw.WriteBit(b)
		}
	}
	out := bw.Bytes()
	assert.Len(t, out, 8)

	br := NewBitReader(out)
	for i := 0; i < 5; i++ {
		for _, want := range pattern {
			got, err := br.ReadBit()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}
