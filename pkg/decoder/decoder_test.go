package decoder

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTables = Tables{
	TableSpecies:        {"-----", "Bulbasaur", "Ivysaur", "Venusaur", "Charmander"},
	TableMoves:          {"-----", "Pound", "Karate Chop", "Double Slap", "Comet Punch", "Mega Punch"},
	TableItems:          {"None", "Master Ball", "Ultra Ball"},
	TableAbilities:      {"-", "Stench", "Drizzle", "Speed Boost"},
	TableNatures:        {"Hardy nature.", "Lonely nature."},
	TableTypes:          {"Normal", "Fighting", "Flying", "Poison", "Ground", "Rock", "Bug", "Ghost", "Steel", "Fire", "Water", "Grass"},
	TableTrainerClasses: {"Pkmn Trainer", "Youngster", "Lass"},
	TableTrainerNames:   {"", "Cheren", "Bianca"},
	TableLocations:      {"Mystery Zone", "Route 1"},
}

func put16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:], v)
}

func put32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

// relatedFrom は役割と番号からレコードを返す Related を作ります
func relatedFrom(records map[Role]map[int][]byte) Related {
	return func(role Role, index int) ([]byte, error) {
		if b, ok := records[role][index]; ok {
			return b, nil
		}
		return nil, errors.New("no record")
	}
}

func TestTrainerPokemonSize(t *testing.T) {
	tests := []struct {
		name string
		flag byte
		want int
	}{
		{"基本のみ", 0b00, 8},
		{"技あり", 0b01, 16},
		{"持ち物あり", 0b10, 10},
		{"技と持ち物", 0b11, 18},
		{"上位ビットは無視", 0xF3, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrainerPokemonSize(tt.flag))
		})
	}
}

func TestTrainerIV(t *testing.T) {
	tests := []struct {
		in   byte
		want int
	}{
		{255, 31}, {0, 0}, {128, 15}, {50, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrainerIV(tt.in), "difficulty %d", tt.in)
	}
}

func TestEVSpread(t *testing.T) {
	assert.Equal(t, map[string]int{"HP": 252, "Atk": 252}, EVSpread(0x03))
	assert.Equal(t, map[string]int{"Spe": 252, "SpD": 252}, EVSpread(0x28))
	assert.Empty(t, EVSpread(0))
	assert.Len(t, EVSpread(0x3F), 6)
}

func TestAIFlagNames(t *testing.T) {
	assert.Equal(t, []string{"Basic AI", "Check bad moves", "Try to faint"}, AIFlagNames(0x07, 5))
	assert.Equal(t, []string{"Weather"}, AIFlagNames(0x100, 4))
	assert.Equal(t, []string{"Risky (advanced)"}, AIFlagNames(0x100, 5))
	assert.Equal(t, []string{"Unknown (0x10000)"}, AIFlagNames(0x10000, 5))
	assert.Empty(t, AIFlagNames(0, 5))
}

func TestMoveCategoryAndEvolutionMethod(t *testing.T) {
	assert.Equal(t, "Physical", MoveCategory(0, 4))
	assert.Equal(t, "Status", MoveCategory(0, 5))
	assert.Equal(t, "cat#7", MoveCategory(7, 5))
	assert.Equal(t, "level_up", EvolutionMethod(4))
	assert.Equal(t, "method#99", EvolutionMethod(99))
}

func TestParseRoleAndWidth(t *testing.T) {
	r, err := ParseRole("trpoke")
	require.NoError(t, err)
	assert.Equal(t, RoleTrainerPokemon, r)

	_, err = ParseRole("graphics")
	assert.ErrorIs(t, err, ErrUnknownRole)

	tests := []struct {
		name  string
		role  Role
		gen   int
		width int
		ok    bool
	}{
		{"第4世代の個体データ", RolePersonal, 4, 44, true},
		{"第5世代の個体データ", RolePersonal, 5, 76, true},
		{"第5世代の技データ", RoleMoveData, 5, 36, true},
		{"可変長", RoleTrainerPokemon, 5, 0, true},
		{"第5世代に無い役割", RolePokeathlon, 5, 0, false},
		{"未知の役割", Role("x"), 5, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := Width(tt.role, tt.gen)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.width, w)
		})
	}
	assert.Contains(t, Roles(), RoleItems)
	assert.False(t, HasRoutine(RoleItems))
	assert.True(t, HasRoutine(RolePersonal))
}

func TestDecode_SoftFailures(t *testing.T) {
	tests := []struct {
		name string
		role Role
		raw  []byte
		gen  int
	}{
		{"解読処理の無い役割", RoleItems, []byte{1, 2, 3}, 5},
		{"未知の役割", Role("unknown"), []byte{1}, 5},
		{"すべて0", RolePersonal, make([]byte, 76), 5},
		{"空", RoleTrainerPokemon, nil, 5},
		{"世代に無い役割", RolePokeathlon, make([]byte, 20), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode(tt.role, tt.raw, Context{Generation: tt.gen})
			assert.NoError(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestDecode_ShortRecord(t *testing.T) {
	_, err := Decode(RoleMoveData, []byte{1, 2, 3}, Context{Generation: 5})
	assert.ErrorIs(t, err, ErrShortRecord)

	raw := make([]byte, 300)
	raw[0] = 1
	_, err = Decode(RoleEncounters, raw, Context{Generation: 4})
	assert.ErrorIs(t, err, ErrShortRecord)
}

func trainerPokemonRecord() []byte {
	raw := make([]byte, 36)
	raw[0], raw[1], raw[2] = 255, 0x12, 5
	put16(raw, 4, 1)
	put16(raw, 8, 1)
	put16(raw, 10, 1)
	put16(raw, 12, 5)
	m2 := raw[18:]
	m2[0], m2[1], m2[2] = 0, 0x00, 50
	put16(m2, 4, 4)
	return raw
}

func gen5Personal(ability1, ability2, hidden byte) []byte {
	raw := make([]byte, 76)
	copy(raw, []byte{45, 49, 49, 45, 65, 65, 11, 3, 45})
	put16(raw, 0x0A, 1<<8)
	put16(raw, 0x0C, 1)
	raw[0x12], raw[0x13], raw[0x14], raw[0x15], raw[0x16], raw[0x17] = 31, 20, 70, 3, 1, 7
	raw[0x18], raw[0x19], raw[0x1A] = ability1, ability2, hidden
	return raw
}

func TestDecode_TrainerPokemon(t *testing.T) {
	trdata := make([]byte, 20)
	trdata[0] = 0x03
	ctx := Context{
		Generation: 5,
		Index:      1,
		Tables:     testTables,
		Related: relatedFrom(map[Role]map[int][]byte{
			RoleTrainerData: {1: trdata},
			RolePersonal:    {1: gen5Personal(1, 2, 3)},
		}),
	}

	v, err := Decode(RoleTrainerPokemon, trainerPokemonRecord(), ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v["template"])
	assert.Equal(t, 2, v["count"])
	assert.Equal(t, "Cheren", v["trainer_name"])

	pokemon := v["pokemon"].([]Value)
	require.Len(t, pokemon, 2)
	first := pokemon[0]
	assert.Equal(t, "Bulbasaur", first["species"])
	assert.Equal(t, 5, first["level"])
	assert.Equal(t, 31, first["ivs"])
	assert.Equal(t, "Female", first["gender"])
	assert.Equal(t, "Drizzle", first["ability"])
	assert.Equal(t, "Master Ball", first["held_item"])
	assert.Equal(t, []string{"Pound", "Mega Punch", "---", "---"}, first["moves"])

	second := pokemon[1]
	assert.Equal(t, "Charmander", second["species"])
	assert.Equal(t, "Random", second["gender"])
	assert.Equal(t, "ability_slot_0", second["ability"])
	assert.Equal(t, "None", second["held_item"])
}

func TestDecode_TrainerPokemonGuessTemplate(t *testing.T) {
	raw := make([]byte, 10)
	raw[2] = 12
	put16(raw, 4, 2)
	put16(raw, 8, 2)

	v, err := Decode(RoleTrainerPokemon, raw, Context{Generation: 4, Tables: testTables})
	require.NoError(t, err)
	assert.Equal(t, 2, v["template"])
	pokemon := v["pokemon"].([]Value)
	assert.Equal(t, "Ivysaur", pokemon[0]["species"])
	assert.Equal(t, "Ultra Ball", pokemon[0]["held_item"])
	assert.NotContains(t, pokemon[0], "moves")
}

func TestDecode_TrainerData(t *testing.T) {
	raw := make([]byte, 20)
	raw[0], raw[1], raw[2], raw[3] = 0x03, 1, 1, 2
	put16(raw, 4, 1)
	put32(raw, 12, 0x07)
	raw[17], raw[18] = 10, 3

	ctx := Context{
		Generation: 5,
		Index:      1,
		Tables:     testTables,
		Related:    relatedFrom(map[Role]map[int][]byte{RoleTrainerPokemon: {1: trainerPokemonRecord()}}),
	}
	v, err := Decode(RoleTrainerData, raw, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Youngster", v["class"])
	assert.Equal(t, "Double", v["battle_type"])
	assert.Equal(t, 2, v["num_pokemon"])
	assert.Equal(t, true, v["has_custom_moves"])
	assert.Equal(t, []string{"Master Ball"}, v["battle_items"])
	assert.Equal(t, []string{"Basic AI", "Check bad moves", "Try to faint"}, v["ai_flags"])
	assert.Equal(t, 10, v["reward_multiplier"])
	assert.Equal(t, 2000, v["prize_money"])
	assert.Equal(t, "Cheren", v["name"])

	t.Run("関連レコードなし", func(t *testing.T) {
		v, err := Decode(RoleTrainerData, raw, Context{Generation: 5, Index: 9})
		require.NoError(t, err)
		assert.NotContains(t, v, "prize_money")
		assert.NotContains(t, v, "name")
		assert.Equal(t, "class#1", v["class"])
	})
	t.Run("第4世代", func(t *testing.T) {
		g4 := make([]byte, 20)
		g4[0], g4[1], g4[3] = 0x01, 2, 1
		put32(g4, 16, 1)
		v, err := Decode(RoleTrainerData, g4, Context{Generation: 4, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, "Lass", v["class"])
		assert.Equal(t, "Double", v["battle_type"])
		assert.NotContains(t, v, "reward_multiplier")
	})
}

func TestDecode_Personal(t *testing.T) {
	v, err := Decode(RolePersonal, gen5Personal(1, 0, 3), Context{Generation: 5, Index: 1, Tables: testTables})
	require.NoError(t, err)
	assert.Equal(t, "Bulbasaur", v["species"])
	assert.Equal(t, 318, v["bst"])
	assert.Equal(t, []string{"Grass", "Poison"}, v["types"])
	assert.Equal(t, map[string]int{"SpA": 1}, v["ev_yield"])
	assert.Equal(t, map[string]string{"common": "Master Ball"}, v["held_items"])
	assert.Equal(t, []string{"Stench", "Speed Boost"}, v["abilities"])
	assert.Equal(t, 31, v["gender_ratio"])
	assert.Equal(t, []int{1, 7}, v["egg_groups"])

	t.Run("第4世代", func(t *testing.T) {
		raw := make([]byte, 44)
		copy(raw, []byte{39, 52, 43, 65, 60, 50, 9, 9, 45})
		raw[0x10], raw[0x16], raw[0x17] = 31, 2, 2
		v, err := Decode(RolePersonal, raw, Context{Generation: 4, Index: 4, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, "Charmander", v["species"])
		assert.Equal(t, []string{"Fire"}, v["types"])
		assert.Equal(t, []string{"Drizzle", "Drizzle"}, v["abilities"])
		assert.Empty(t, v["held_items"])
	})
}

func TestPersonalAbility(t *testing.T) {
	raw := gen5Personal(1, 2, 3)
	id, ok := PersonalAbility(raw, 5, 2)
	assert.True(t, ok)
	assert.Equal(t, 3, id)

	_, ok = PersonalAbility(raw, 4, 2)
	assert.False(t, ok)
	_, ok = PersonalAbility(nil, 5, 0)
	assert.False(t, ok)
}

func TestDecode_Learnset(t *testing.T) {
	t.Run("第4世代", func(t *testing.T) {
		raw := []byte{}
		raw = binary.LittleEndian.AppendUint16(raw, 1<<9|1)
		raw = binary.LittleEndian.AppendUint16(raw, 7<<9|5)
		raw = binary.LittleEndian.AppendUint16(raw, 0xFFFF)
		v, err := Decode(RoleLearnsets, raw, Context{Generation: 4, Index: 1, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, []Value{{"move": "Pound", "level": 1}, {"move": "Mega Punch", "level": 7}}, v["moves"])
	})
	t.Run("第5世代", func(t *testing.T) {
		raw := []byte{}
		for _, x := range []uint16{2, 1, 3, 10, 0xFFFF, 0xFFFF} {
			raw = binary.LittleEndian.AppendUint16(raw, x)
		}
		v, err := Decode(RoleLearnsets, raw, Context{Generation: 5, Index: 1, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, []Value{{"move": "Karate Chop", "level": 1}, {"move": "Double Slap", "level": 10}}, v["moves"])
	})
}

func TestDecode_Evolutions(t *testing.T) {
	raw := make([]byte, 42)
	put16(raw, 0, 4)
	put16(raw, 2, 16)
	put16(raw, 4, 2)
	put16(raw, 6, 8)
	put16(raw, 8, 1)
	put16(raw, 10, 3)

	v, err := Decode(RoleEvolutions, raw, Context{Generation: 5, Index: 1, Tables: testTables})
	require.NoError(t, err)
	evos := v["evolutions"].([]Value)
	require.Len(t, evos, 2)
	assert.Equal(t, Value{"method": "level_up", "target": "Ivysaur", "target_id": 2, "level": 16}, evos[0])
	assert.Equal(t, Value{"method": "stone", "target": "Venusaur", "target_id": 3, "item": "Master Ball"}, evos[1])
}

func TestDecode_MoveData(t *testing.T) {
	t.Run("第5世代", func(t *testing.T) {
		raw := make([]byte, 36)
		raw[0], raw[2], raw[3], raw[4], raw[5], raw[6], raw[7], raw[10] = 1, 1, 50, 100, 25, 0xFF, 0x52, 30
		v, err := Decode(RoleMoveData, raw, Context{Generation: 5, Index: 2, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, "Karate Chop", v["move"])
		assert.Equal(t, "Fighting", v["type"])
		assert.Equal(t, "Physical", v["category"])
		assert.Equal(t, 50, v["power"])
		assert.Equal(t, 100, v["accuracy"])
		assert.Equal(t, -1, v["priority"])
		assert.Equal(t, "2-5", v["hits"])
		assert.Equal(t, "30%", v["effect_chance"])
	})
	t.Run("第4世代", func(t *testing.T) {
		raw := make([]byte, 16)
		raw[2], raw[3], raw[4], raw[5], raw[6] = 2, 0, 0, 101, 20
		v, err := Decode(RoleMoveData, raw, Context{Generation: 4, Index: 1, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, "Status", v["category"])
		assert.Equal(t, "Normal", v["type"])
		assert.NotContains(t, v, "power")
		assert.NotContains(t, v, "accuracy")
	})
}

func TestDecode_Encounters(t *testing.T) {
	season := func(species uint16) []byte {
		rec := make([]byte, gen5EncounterSize)
		rec[0] = 20
		put16(rec, 8, species)
		rec[10], rec[11] = 2, 4
		return rec
	}

	t.Run("第5世代", func(t *testing.T) {
		v, err := Decode(RoleEncounters, season(1|1<<11), Context{Generation: 5, Index: 1, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, "Route 1", v["location"])
		assert.Equal(t, map[string]int{"grass": 20}, v["rates"])
		assert.Equal(t, []Value{{"species": "Bulbasaur (form 1)", "level": "2-4"}}, v["grass"])
	})
	t.Run("季節ごと", func(t *testing.T) {
		raw := append(append(append(season(1), season(2)...), season(3)...), season(4)...)
		v, err := Decode(RoleEncounters, raw, Context{Generation: 5, Tables: testTables})
		require.NoError(t, err)
		seasons := v["seasons"].([]Value)
		require.Len(t, seasons, 4)
		assert.Equal(t, "Winter", seasons[3]["season"])
		assert.Equal(t, []Value{{"species": "Charmander", "level": "2-4"}}, seasons[3]["grass"])
	})
	t.Run("HGSS", func(t *testing.T) {
		raw := make([]byte, hgssEncounterSize)
		raw[0], raw[1] = 30, 10
		raw[8] = 3
		put16(raw, 20+24, 1)
		raw[100], raw[101] = 10, 15
		put16(raw, 102, 4)
		v, err := Decode(RoleEncounters, raw, Context{Generation: 4, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, Value{"day": []Value{{"species": "Bulbasaur", "level": 3}}}, v["grass"])
		assert.Equal(t, []Value{{"species": "Charmander", "level": "10-15"}}, v["surf"])
	})
	t.Run("DPPt", func(t *testing.T) {
		raw := make([]byte, dppEncounterSize)
		put32(raw, 0, 10)
		put32(raw, 4, 3)
		put32(raw, 8, 2)
		put32(raw, 100, 4)
		put32(raw, 204, 5)
		raw[208], raw[209] = 30, 20
		put16(raw, 212, 1)
		v, err := Decode(RoleEncounters, raw, Context{Generation: 4, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, []Value{{"species": "Ivysaur", "level": 3}}, v["grass"])
		assert.Equal(t, []string{"Charmander"}, v["swarm"])
		assert.Equal(t, []Value{{"species": "Bulbasaur", "level": "20-30"}}, v["surf"])
	})
}

func facilityRecord() []byte {
	raw := make([]byte, 16)
	put16(raw, 0, 3)
	put16(raw, 2, 1)
	put16(raw, 4, 4)
	raw[10], raw[11] = 0x03, 1
	put16(raw, 12, 2)
	return raw
}

func TestDecode_Facility(t *testing.T) {
	t.Run("チャンピオン", func(t *testing.T) {
		v, err := Decode(RoleFacilityChampions, facilityRecord(), Context{Generation: 5, Index: 7, Label: "Champions", Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, "Venusaur", v["species"])
		assert.Equal(t, []string{"Pound", "Comet Punch", "---", "---"}, v["moves"])
		assert.Equal(t, map[string]int{"HP": 252, "Atk": 252}, v["evs"])
		assert.Equal(t, "Lonely", v["nature"])
		assert.Equal(t, "Ultra Ball", v["held_item"])
		assert.Equal(t, "Champions", v["facility"])
		assert.Equal(t, 7, v["pool_index"])
	})
	t.Run("レンタル", func(t *testing.T) {
		v, err := Decode(RoleFacilityPokemon, facilityRecord(), Context{Generation: 5, Tables: testTables})
		require.NoError(t, err)
		assert.Equal(t, "Lass", v["trainer_class"])
		assert.NotContains(t, v, "held_item")
		assert.NotContains(t, v, "facility")
	})
	t.Run("名簿", func(t *testing.T) {
		raw := []byte{1, 0, 3, 0, 10, 0, 11, 0, 12, 0}
		v, err := Decode(RoleFacilityRoster, raw, Context{Generation: 5, Index: 4, Label: "Battle Subway"})
		require.NoError(t, err)
		assert.Equal(t, 1, v["format"])
		assert.Equal(t, []int{10, 11, 12}, v["pool_indices"])
		assert.Equal(t, "Battle Subway", v["facility"])
	})
	t.Run("名簿が途中で切れる", func(t *testing.T) {
		raw := []byte{1, 0, 5, 0, 10, 0}
		v, err := Decode(RoleFacilityRoster, raw, Context{Generation: 4})
		require.NoError(t, err)
		assert.Equal(t, []int{10}, v["pool_indices"])
		assert.Equal(t, 5, v["pool_count"])
	})
	t.Run("トレーナー設定", func(t *testing.T) {
		v, err := Decode(RoleFacilityTrainer, []byte{2, 0, 8, 0, 100, 0}, Context{Generation: 5, Index: 3})
		require.NoError(t, err)
		assert.Equal(t, Value{"format": 2, "count": 8, "start_index": 100, "slot_index": 3}, v)
	})
}

func TestDecode_Pokeathlon(t *testing.T) {
	raw := make([]byte, 20)
	raw[5], raw[10] = 1, 3
	raw[11], raw[12] = 2, 2
	v, err := Decode(RolePokeathlon, raw, Context{Generation: 4, Index: 1, Tables: testTables})
	require.NoError(t, err)
	stats := v["stats"].(map[string]string)
	assert.Equal(t, "2/4*", stats["Speed"])
	assert.Equal(t, "3*", stats["Power"])
	assert.Equal(t, "1*", stats["Jump"])
}

func TestDecode_Contest(t *testing.T) {
	raw := make([]byte, contestEntrySize*2)
	put16(raw, 8, 1)
	put16(raw, 12, 1)
	put16(raw, 14, 5)
	v, err := Decode(RoleContest, raw, Context{Generation: 4, Tables: testTables})
	require.NoError(t, err)
	assert.Equal(t, 1, v["count"])
	assert.Equal(t, "Contest Hall", v["facility"])
	assert.Equal(t, []Value{{"species": "Bulbasaur", "species_id": 1, "moves": []string{"Pound", "Mega Punch"}}}, v["pokemon"])
}
