package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Creative-Genius2/LinkPlay/internal/app"
	"github.com/Creative-Genius2/LinkPlay/internal/logger"
	"github.com/Creative-Genius2/LinkPlay/pkg/session"
)

var (
	// 共通のフラグ
	debug     bool
	jsonOut   bool
	gamesPath string

	// fs はイメージとゲーム設定を読み書きするファイルシステムです
	fs afero.Fs = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "linkplay",
	Short: "Browse, decode and patch Pokémon DS cartridge images",
	Long: `linkplay exposes a Nintendo DS (or flat GBA/GB) cartridge image as a
virtual filesystem. It decompresses files and NARC members on read, decodes
trainer, personal, move and encounter records into named fields, decrypts
the text banks, and repacks edited images.

Container members are addressed as <path>:<index>, for example a/0/9/2:12.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if debug {
			level = slog.LevelDebug
		}
		logger.Init(logger.Options{Enabled: true, Level: level})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Print debug logs to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&gamesPath, "games", "", "Load game configuration from a YAML file instead of the built-in one")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newApp は共通のフラグからAppを作成します
func newApp() (*app.App, error) {
	return app.New(app.Options{FileSystem: fs, Logger: logger.L, GamesPath: gamesPath})
}

// openROM はイメージを開きます。呼び出し側でセッションを閉じます
func openROM(path string) (*app.App, *session.Session, error) {
	a, err := newApp()
	if err != nil {
		return nil, nil, err
	}
	s, err := a.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return a, s, nil
}

// printInfo は標準出力に書式付きで出力します
func printInfo(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}

// printJSON は v をインデント付きのJSONで出力します
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
