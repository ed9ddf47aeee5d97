package decoder

import (
	"encoding/binary"
	"fmt"
)

// 能力値の並び。EVのビットマスクと努力値の2ビット欄はこの順です
var statNames = []string{"HP", "Atk", "Def", "Spe", "SpA", "SpD"}

const evPerStat = 252

// trainerPokemonSizes はテンプレートフラグごとのポケモン1体分の長さです
var trainerPokemonSizes = [4]int{8, 16, 10, 18}

// TrainerPokemonSize はトレーナーデータ先頭のフラグ (下位2ビット) から1体分の長さを返します。
// ビット0は技、ビット1は持ち物を持つことを表します。
func TrainerPokemonSize(flag byte) int {
	return trainerPokemonSizes[flag&0x03]
}

// TrainerIV は難易度の値から全能力共通の個体値を求めます
func TrainerIV(difficulty byte) int {
	return int(difficulty) * 31 / 255
}

// EVSpread はビットマスクで指定された能力に252ずつ振った努力値を返します
func EVSpread(mask byte) map[string]int {
	out := map[string]int{}
	for i, s := range statNames {
		if mask&(1<<i) != 0 {
			out[s] = evPerStat
		}
	}
	return out
}

var aiFlagsGen5 = []string{
	"Basic AI", "Check bad moves", "Try to faint", "Check viability",
	"Setup first turn", "Risky", "Prefer strongest", "Prefer status",
	"Risky (advanced)", "Weather", "Trapping", "Expert",
	"Double battle", "HP aware", "Unknown (0x4000)", "Roaming",
}

var aiFlagsGen4 = []string{
	"Basic AI", "Check bad moves", "Try to faint", "Check viability",
	"Setup first turn", "Risky", "Prefer strongest", "Prefer status",
	"Weather", "Trapping", "Unknown (0x400)", "Unknown (0x800)",
	"Unknown (0x1000)", "Unknown (0x2000)", "Unknown (0x4000)", "Unknown (0x8000)",
}

// AIFlagNames はAIフラグのうち立っているものの名前を返します
func AIFlagNames(flags uint32, generation int) []string {
	names := aiFlagsGen5
	if generation <= 4 {
		names = aiFlagsGen4
	}
	out := []string{}
	for i, n := range names {
		if flags&(1<<i) != 0 {
			out = append(out, n)
		}
	}
	for i := len(names); i < 32; i++ {
		if flags&(1<<i) != 0 {
			out = append(out, fmt.Sprintf("Unknown (0x%X)", uint32(1)<<i))
		}
	}
	return out
}

var battleTypes = map[int]string{0: "Single", 1: "Double", 2: "Triple", 3: "Rotation"}

func battleType(v int) string {
	if s, ok := battleTypes[v]; ok {
		return s
	}
	return fmt.Sprintf("Unknown (%d)", v)
}

var evolutionMethods = map[int]string{
	1: "happiness", 2: "happiness_day", 3: "happiness_night",
	4: "level_up", 5: "trade", 6: "trade_with_item", 7: "trade_for_species",
	8: "stone", 9: "atk>def", 10: "atk=def", 11: "atk<def",
	12: "personality_lo", 13: "personality_hi", 14: "ninjask", 15: "shedinja",
	16: "beauty", 17: "item_day", 18: "item_night", 19: "move",
	20: "party_species", 21: "level_male", 22: "level_female", 23: "level_electric_field",
	24: "level_mossy_rock", 25: "level_icy_rock", 26: "level_mossy_rock_2",
	27: "level_icy_rock_2", 28: "level_dark", 29: "spin", 30: "level_rain",
}

// EvolutionMethod は進化方法の名前を返します
func EvolutionMethod(method int) string {
	if s, ok := evolutionMethods[method]; ok {
		return s
	}
	return fmt.Sprintf("method#%d", method)
}

var (
	moveCategoriesGen4 = []string{"Physical", "Special", "Status"}
	moveCategoriesGen5 = []string{"Status", "Physical", "Special"}
)

// MoveCategory は世代ごとの技の分類名を返します
func MoveCategory(category byte, generation int) string {
	names := moveCategoriesGen5
	if generation <= 4 {
		names = moveCategoriesGen4
	}
	if int(category) < len(names) {
		return names[category]
	}
	return fmt.Sprintf("cat#%d", category)
}

func gender(v byte) string {
	switch v {
	case 1:
		return "Male"
	case 2:
		return "Female"
	case 3:
		return "Genderless"
	}
	return "Random"
}

func levelRange(lo, hi int) string {
	if lo == hi {
		return fmt.Sprint(lo)
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}

func u16(b []byte, off int) int {
	return int(binary.LittleEndian.Uint16(b[off:]))
}

func u32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}
