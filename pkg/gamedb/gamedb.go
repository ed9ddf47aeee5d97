// Package gamedb はゲームごとの静的な設定 (世代、テキストファイル、コンテナの役割) を提供します。
//
// 既定の設定は games.yaml として埋め込まれており、Load で別の YAML に差し替えられます。
package gamedb

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed games.yaml
var defaultYAML []byte

// Reference は第5世代の乗数を求めるための参照エントリです
type Reference struct {
	// Candidates は先に試すテキストファイル番号です
	Candidates []int  `yaml:"candidates" json:"candidates,omitempty"`
	Entry      int    `yaml:"entry" json:"entry"`
	Expected   string `yaml:"expected" json:"expected"`
}

// TextConfig はテキストコンテナの設定です
type TextConfig struct {
	Path      string    `yaml:"path" json:"path"`
	Reference Reference `yaml:"reference" json:"reference"`
}

// Container はコンテナのパスと役割の対応です
type Container struct {
	Path  string `yaml:"path" json:"path"`
	Role  string `yaml:"role" json:"role"`
	Label string `yaml:"label" json:"label,omitempty"`
}

// Game は1つのゲーム (同じデータ配置を持つバージョンの組) の設定です
type Game struct {
	Codes      []string    `yaml:"codes" json:"codes"`
	Title      string      `yaml:"title" json:"title"`
	Generation int         `yaml:"generation" json:"generation"`
	Text       TextConfig  `yaml:"text" json:"text"`
	Containers []Container `yaml:"containers" json:"containers"`
}

// ContainerAt はパスに割り当てられたコンテナ設定を返します
func (g *Game) ContainerAt(path string) (Container, bool) {
	path = strings.Trim(path, "/")
	for _, c := range g.Containers {
		if c.Path == path {
			return c, true
		}
	}
	return Container{}, false
}

// PathFor は役割を持つ最初のコンテナのパスを返します
func (g *Game) PathFor(role string) (string, bool) {
	for _, c := range g.Containers {
		if c.Role == role {
			return c.Path, true
		}
	}
	return "", false
}

// Reference はテキストの参照エントリを返します。未設定の項目は既定値で補います
func (g *Game) Reference() Reference {
	ref := g.Text.Reference
	if ref.Expected == "" {
		ref.Entry, ref.Expected = 1, "Bulbasaur"
	}
	return ref
}

type file struct {
	Games []Game `yaml:"games"`
}

// DB はゲームコードから設定を引くためのデータベースです
type DB struct {
	games  []Game
	byCode map[string]*Game
}

// Load は YAML からデータベースを読み込みます
func Load(r io.Reader) (*DB, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	db := &DB{games: f.Games, byCode: map[string]*Game{}}
	for i := range db.games {
		g := &db.games[i]
		if err := validate(g); err != nil {
			return nil, err
		}
		for _, code := range g.Codes {
			code = strings.ToUpper(code)
			if _, dup := db.byCode[code]; dup {
				return nil, fmt.Errorf("%w: game code %s listed twice", ErrInvalidConfig, code)
			}
			db.byCode[code] = g
		}
	}
	return db, nil
}

func validate(g *Game) error {
	if len(g.Codes) == 0 {
		return fmt.Errorf("%w: game %q has no codes", ErrInvalidConfig, g.Title)
	}
	for _, code := range g.Codes {
		if len(code) != 3 {
			return fmt.Errorf("%w: game code %q must be 3 letters", ErrInvalidConfig, code)
		}
	}
	if g.Generation != 4 && g.Generation != 5 {
		return fmt.Errorf("%w: %s has unsupported generation %d", ErrInvalidConfig, g.Codes[0], g.Generation)
	}
	seen := map[string]bool{}
	for i, c := range g.Containers {
		if c.Path == "" || c.Role == "" {
			return fmt.Errorf("%w: %s container %d needs path and role", ErrInvalidConfig, g.Codes[0], i)
		}
		p := strings.Trim(c.Path, "/")
		if seen[p] {
			return fmt.Errorf("%w: %s lists %s twice", ErrInvalidConfig, g.Codes[0], p)
		}
		seen[p] = true
		g.Containers[i].Path = p
	}
	return nil
}

var defaultDB = sync.OnceValues(func() (*DB, error) {
	return Load(strings.NewReader(string(defaultYAML)))
})

// Default は埋め込みの設定を返します
func Default() *DB {
	db, err := defaultDB()
	if err != nil {
		panic(fmt.Sprintf("gamedb: embedded games.yaml: %v", err))
	}
	return db
}

// Lookup はゲームコード (先頭3文字) から設定を返します
func (db *DB) Lookup(code string) (*Game, error) {
	if len(code) > 3 {
		code = code[:3]
	}
	g, ok := db.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, code)
	}
	return g, nil
}

// Games は登録されている全ゲームを返します
func (db *DB) Games() []Game {
	return append([]Game(nil), db.games...)
}
