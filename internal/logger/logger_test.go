package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Cleanup(func() { Init(Options{}) })

	tests := []struct {
		name    string
		opts    Options
		wantOut bool
	}{
		{"無効", Options{Enabled: false}, false},
		{"情報レベルではデバッグを出さない", Options{Enabled: true, Level: slog.LevelInfo}, false},
		{"デバッグレベル", Options{Enabled: true, Level: slog.LevelDebug}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.opts.Writer = &buf
			Init(tt.opts)
			Debug("opened", "path", "rom.nds")
			assert.Equal(t, tt.wantOut, buf.Len() > 0)
		})
	}
}

func TestInit_JSON(t *testing.T) {
	t.Cleanup(func() { Init(Options{}) })

	var buf bytes.Buffer
	Init(Options{Enabled: true, Writer: &buf, JSON: true})
	Warn("repack", "files", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "repack", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, float64(3), rec["files"])
}
