// Package logger はコマンド全体で使う slog のロガーを管理します
package logger

import (
	"io"
	"log/slog"
	"os"
)

// L は共通のロガーです。Init を呼ぶまではすべての出力を捨てます
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options はロガーの設定です
type Options struct {
	Enabled bool // false の場合、すべての出力を捨てます
	// Writer は出力先です。既定は標準エラー出力です
	Writer io.Writer
	Level  slog.Level
	JSON   bool // JSON形式で出力します
}

// Init はロガーを設定して返します
func Init(opts Options) *slog.Logger {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return L
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, ho))
	} else {
		L = slog.New(slog.NewTextHandler(w, ho))
	}
	return L
}

// Debug はデバッグメッセージを出力します
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info は情報メッセージを出力します
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn は警告メッセージを出力します
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error はエラーメッセージを出力します
func Error(msg string, args ...any) { L.Error(msg, args...) }
