package decoder

const facilityMoveSlots = 4

// facilityPokemon は施設のポケモンプールの1件 (16バイト) を解読する処理を返します。
// オフセット12の値は withItem のとき持ち物、それ以外ではトレーナー分類です。
func facilityPokemon(withItem bool) func([]byte, *Context) (Value, error) {
	return func(raw []byte, ctx *Context) (Value, error) {
		return decodeFacilityPokemon(raw, ctx, withItem)
	}
}

func decodeFacilityPokemon(raw []byte, ctx *Context, withItem bool) (Value, error) {
	t := ctx.Tables
	species := u16(raw, 0)
	moves := make([]string, facilityMoveSlots)
	for i := range moves {
		moves[i] = "---"
		if id := u16(raw, 2+i*2); id > 0 {
			moves[i] = t.move(id)
		}
	}
	v := Value{
		"species":    t.species(species),
		"species_id": species,
		"moves":      moves,
		"evs":        EVSpread(raw[10]),
		"nature":     t.nature(int(raw[11])),
		"pool_index": ctx.Index,
	}
	extra := u16(raw, 12)
	if withItem {
		v["held_item"] = "None"
		if extra > 0 {
			v["held_item"] = t.item(extra)
		}
	} else {
		v["trainer_class"] = t.Name(TableTrainerClasses, extra, "class#%d")
	}
	if ctx.Label != "" {
		v["facility"] = ctx.Label
	}
	return v, nil
}

func decodeFacilityRoster(raw []byte, ctx *Context) (Value, error) {
	format, count := u16(raw, 0), u16(raw, 2)
	if format == 0 && count == 0 {
		return nil, nil
	}
	indices := make([]int, 0, count)
	for i := 0; i < count && 4+i*2+2 <= len(raw); i++ {
		indices = append(indices, u16(raw, 4+i*2))
	}
	v := Value{
		"format":        format,
		"pool_count":    count,
		"pool_indices":  indices,
		"trainer_index": ctx.Index,
	}
	if ctx.Label != "" {
		v["facility"] = ctx.Label
	}
	return v, nil
}

func decodeFacilityTrainer(raw []byte, ctx *Context) (Value, error) {
	v := Value{
		"format":      u16(raw, 0),
		"count":       u16(raw, 2),
		"start_index": u16(raw, 4),
		"slot_index":  ctx.Index,
	}
	if ctx.Label != "" {
		v["facility"] = ctx.Label
	}
	return v, nil
}
