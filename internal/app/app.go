// Package app はコマンドラインからのイメージの読み込みと保存を管理します
package app

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Creative-Genius2/LinkPlay/pkg/gamedb"
	"github.com/Creative-Genius2/LinkPlay/pkg/session"
)

// App はファイルシステムとゲーム設定を保持し、セッションを作成します
type App struct {
	fs     afero.Fs
	logger *slog.Logger
	db     *gamedb.DB
}

// Options はAppの設定オプション
type Options struct {
	FileSystem afero.Fs
	Logger     *slog.Logger
	// GamesPath はゲーム設定のYAMLファイルです。空の場合は埋め込みの設定を使います
	GamesPath string
}

// New は新しいAppを作成します
func New(opts Options) (*App, error) {
	fs := opts.FileSystem
	if fs == nil {
		fs = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := &App{fs: fs, logger: logger, db: gamedb.Default()}

	if opts.GamesPath != "" {
		f, err := fs.Open(opts.GamesPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadGames, err)
		}
		defer f.Close()
		db, err := gamedb.Load(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadGames, opts.GamesPath, err)
		}
		a.db = db
		logger.Debug("game configuration loaded", "path", opts.GamesPath, "games", len(db.Games()))
	}
	return a, nil
}

// FileSystem はAppが使うファイルシステムを返します
func (a *App) FileSystem() afero.Fs {
	return a.fs
}

// Open はイメージファイルを読み込んでセッションを作成します
func (a *App) Open(path string) (*session.Session, error) {
	image, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadImage, err)
	}
	a.logger.Debug("image loaded", "path", path, "size", len(image))
	s, err := session.Open(image, session.WithLogger(a.logger), session.WithGameDB(a.db))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadImage, path, err)
	}
	return s, nil
}

// Save はセッションの編集を反映したイメージを out に書き出します
func (a *App) Save(s *session.Session, out string) error {
	image, err := s.Save()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteImage, err)
		}
	}
	if err := afero.WriteFile(a.fs, out, image, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteImage, err)
	}
	a.logger.Info("image written", "path", out, "size", len(image))
	return nil
}

// Games は使用中のゲーム設定をすべて返します
func (a *App) Games() []gamedb.Game {
	return a.db.Games()
}
