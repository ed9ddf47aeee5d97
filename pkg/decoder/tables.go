package decoder

import (
	"fmt"
	"strings"
)

// テキストテーブルの名前
const (
	TableSpecies             = "species"
	TableMoves               = "moves"
	TableItems               = "items"
	TableAbilities           = "abilities"
	TableNatures             = "natures"
	TableTypes               = "type_names"
	TableTrainerClasses      = "trainer_classes"
	TableTrainerNames        = "trainer_names"
	TableLocations           = "location_names"
	TableItemDescriptions    = "item_descriptions"
	TableMoveDescriptions    = "move_descriptions"
	TableAbilityDescriptions = "ability_descriptions"
)

// Tables は名前付きのテキストテーブルです
type Tables map[string][]string

// Name は id 番目の文字列を返します。見つからない場合は format に id を埋めた文字列を返します
func (t Tables) Name(table string, id int, format string) string {
	if names := t[table]; id >= 0 && id < len(names) {
		return names[id]
	}
	return fmt.Sprintf(format, id)
}

// Has はテーブルが存在し、id 番目の文字列を持つかを返します
func (t Tables) Has(table string, id int) bool {
	return id >= 0 && id < len(t[table])
}

func (t Tables) species(id int) string {
	return t.Name(TableSpecies, id, "#%d")
}

func (t Tables) move(id int) string {
	return t.Name(TableMoves, id, "move#%d")
}

func (t Tables) item(id int) string {
	return t.Name(TableItems, id, "item#%d")
}

func (t Tables) ability(id int) string {
	return t.Name(TableAbilities, id, "ability#%d")
}

func (t Tables) typeName(id int) string {
	return t.Name(TableTypes, id, "type#%d")
}

// nature は性格名から説明文の定型部分を取り除いて返します
func (t Tables) nature(id int) string {
	if !t.Has(TableNatures, id) {
		return fmt.Sprintf("nature#%d", id)
	}
	s := strings.TrimSpace(t[TableNatures][id])
	s = strings.TrimSuffix(s, " nature.")
	return strings.TrimSpace(s)
}
