package decoder

import "fmt"

const (
	trainerItemSlots   = 4
	trainerMoveSlots   = 4
	prizeMultiplier    = 4
	trainerFlagMoves   = 0x01
	trainerFlagItems   = 0x02
	trainerFlagMask    = 0x03
	gen4BattleTypeOff  = 16
	gen5PrizeOffset    = 17
	gen5AreaOffset     = 18
	trpokeLevelOffset  = 2
	trpokeSpeciesOff   = 4
	trpokeFormOff      = 6
	trpokeExtrasOffset = 8
)

func decodeTrainerData(raw []byte, ctx *Context) (Value, error) {
	t := ctx.Tables
	flags := raw[0]
	items := []string{}
	for i := 0; i < trainerItemSlots; i++ {
		if id := u16(raw, 4+i*2); id > 0 {
			items = append(items, t.item(id))
		}
	}
	v := Value{
		"class":            t.Name(TableTrainerClasses, int(raw[1]), "class#%d"),
		"class_id":         int(raw[1]),
		"num_pokemon":      int(raw[3]),
		"has_custom_moves": flags&trainerFlagMoves != 0,
		"has_held_items":   flags&trainerFlagItems != 0,
		"battle_items":     items,
		"ai_flags":         AIFlagNames(u32(raw, 12), ctx.Generation),
	}
	if ctx.Generation <= 4 {
		v["battle_type"] = battleType(int(u32(raw, gen4BattleTypeOff)))
	} else {
		v["battle_type"] = battleType(int(raw[2]))
		v["reward_multiplier"] = int(raw[gen5PrizeOffset])
		v["area_id"] = int(raw[gen5AreaOffset])
		if tp := ctx.related(RoleTrainerPokemon, ctx.Index); len(tp) > 0 {
			size := TrainerPokemonSize(flags)
			if n := len(tp) / size; n > 0 {
				last := int(tp[(n-1)*size+trpokeLevelOffset])
				v["prize_money"] = int(raw[gen5PrizeOffset]) * last * prizeMultiplier
			}
		}
	}
	if t.Has(TableTrainerNames, ctx.Index) {
		v["name"] = t[TableTrainerNames][ctx.Index]
	}
	return v, nil
}

// guessTemplate はトレーナーデータが無い場合にファイル長からテンプレートを推定します
func guessTemplate(n int) byte {
	for _, tmpl := range []byte{3, 2, 1, 0} {
		size := trainerPokemonSizes[tmpl]
		if n%size == 0 && n/size > 0 {
			return tmpl
		}
	}
	return 0
}

func decodeTrainerPokemon(raw []byte, ctx *Context) (Value, error) {
	t := ctx.Tables
	template := guessTemplate(len(raw))
	if td := ctx.related(RoleTrainerData, ctx.Index); len(td) > 0 {
		template = td[0] & trainerFlagMask
	}
	size := TrainerPokemonSize(template)
	count := len(raw) / size
	if count == 0 {
		return nil, fmt.Errorf("%w: trainer pokemon needs %d bytes, got %d", ErrShortRecord, size, len(raw))
	}

	pokemon := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		rec := raw[i*size : (i+1)*size]
		species := u16(rec, trpokeSpeciesOff)
		slot := int(rec[1] >> 4)
		p := Value{
			"species":    t.species(species),
			"species_id": species,
			"level":      int(rec[trpokeLevelOffset]),
			"ability":    trainerAbility(ctx, species, slot),
			"gender":     gender(rec[1] & 0x0F),
			"ivs":        TrainerIV(rec[0]),
			"form":       u16(rec, trpokeFormOff),
		}
		off := trpokeExtrasOffset
		if template&trainerFlagItems != 0 {
			id := u16(rec, off)
			p["held_item"] = "None"
			if id > 0 {
				p["held_item"] = t.item(id)
			}
			off += 2
		}
		if template&trainerFlagMoves != 0 {
			moves := make([]string, trainerMoveSlots)
			for m := range moves {
				moves[m] = "---"
				if id := u16(rec, off+m*2); id > 0 {
					moves[m] = t.move(id)
				}
			}
			p["moves"] = moves
		}
		pokemon = append(pokemon, p)
	}

	v := Value{
		"template":      int(template),
		"count":         count,
		"pokemon":       pokemon,
		"trainer_index": ctx.Index,
	}
	if t.Has(TableTrainerNames, ctx.Index) {
		v["trainer_name"] = t[TableTrainerNames][ctx.Index]
	}
	return v, nil
}

// trainerAbility は個体データから特性スロットの特性名を求めます
func trainerAbility(ctx *Context, species, slot int) string {
	personal := ctx.related(RolePersonal, species)
	id, ok := PersonalAbility(personal, ctx.Generation, slot)
	if !ok {
		return fmt.Sprintf("ability_slot_%d", slot)
	}
	return ctx.Tables.ability(id)
}
