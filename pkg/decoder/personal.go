package decoder

import "fmt"

var baseStatKeys = []string{"hp", "atk", "def", "spe", "spa", "spd"}

type personalLayout struct {
	items     int
	gender    int
	abilities int
	slots     int
}

var personalLayouts = map[int]personalLayout{
	4: {items: 2, gender: 0x10, abilities: 0x16, slots: 2},
	5: {items: 3, gender: 0x12, abilities: 0x18, slots: 3},
}

// PersonalAbility は個体データから特性スロットの特性番号を返します
func PersonalAbility(raw []byte, generation, slot int) (int, bool) {
	l, ok := personalLayouts[generation]
	if !ok || slot < 0 || slot >= l.slots || l.abilities+slot >= len(raw) {
		return 0, false
	}
	return int(raw[l.abilities+slot]), true
}

func decodePersonal(raw []byte, ctx *Context) (Value, error) {
	l := personalLayouts[ctx.Generation]
	t := ctx.Tables

	base := map[string]int{}
	total := 0
	for i, k := range baseStatKeys {
		base[k] = int(raw[i])
		total += int(raw[i])
	}

	types := []string{t.typeName(int(raw[6]))}
	if raw[7] != raw[6] {
		types = append(types, t.typeName(int(raw[7])))
	}

	evRaw := u16(raw, 0x0A)
	evYield := map[string]int{}
	for i, s := range statNames {
		if v := evRaw >> (i * 2) & 3; v != 0 {
			evYield[s] = v
		}
	}

	held := map[string]string{}
	for i, label := range []string{"common", "rare", "hidden"}[:l.items] {
		if id := u16(raw, 0x0C+i*2); id > 0 {
			held[label] = t.item(id)
		}
	}

	abilities := []string{}
	for slot := 0; slot < l.slots; slot++ {
		if id, ok := PersonalAbility(raw, ctx.Generation, slot); ok && id > 0 {
			abilities = append(abilities, t.ability(id))
		}
	}

	g := l.gender
	return Value{
		"species":        t.species(ctx.Index),
		"species_id":     ctx.Index,
		"base_stats":     base,
		"bst":            total,
		"types":          types,
		"catch_rate":     int(raw[8]),
		"ev_yield":       evYield,
		"held_items":     held,
		"abilities":      abilities,
		"gender_ratio":   int(raw[g]),
		"hatch_cycles":   int(raw[g+1]),
		"base_happiness": int(raw[g+2]),
		"exp_growth":     int(raw[g+3]),
		"egg_groups":     []int{int(raw[g+4]), int(raw[g+5])},
	}, nil
}

func decodeLearnset(raw []byte, ctx *Context) (Value, error) {
	t := ctx.Tables
	moves := []Value{}
	if ctx.Generation <= 4 {
		for i := 0; i+2 <= len(raw); i += 2 {
			v := u16(raw, i)
			if v == 0xFFFF {
				break
			}
			moves = append(moves, Value{"move": t.move(v & 0x1FF), "level": v >> 9 & 0x7F})
		}
	} else {
		for i := 0; i+4 <= len(raw); i += 4 {
			id := u16(raw, i)
			if id == 0xFFFF {
				break
			}
			moves = append(moves, Value{"move": t.move(id), "level": u16(raw, i+2)})
		}
	}
	return Value{
		"species":    t.species(ctx.Index),
		"species_id": ctx.Index,
		"moves":      moves,
	}, nil
}

const evolutionSlots = 7

func decodeEvolutions(raw []byte, ctx *Context) (Value, error) {
	t := ctx.Tables
	evolutions := []Value{}
	for i := 0; i < evolutionSlots; i++ {
		off := i * 6
		method, param, target := u16(raw, off), u16(raw, off+2), u16(raw, off+4)
		if method == 0 && target == 0 {
			continue
		}
		evo := Value{"method": EvolutionMethod(method), "target": t.species(target), "target_id": target}
		switch method {
		case 4, 9, 10, 11, 21, 22, 23, 24, 25, 26, 27, 28:
			evo["level"] = param
		case 6, 8, 17, 18:
			evo["item"] = t.item(param)
		case 19:
			evo["move"] = t.move(param)
		case 7:
			evo["trade_species"] = t.species(param)
		case 20:
			evo["party_species"] = t.species(param)
		default:
			if param > 0 {
				evo["param"] = param
			}
		}
		evolutions = append(evolutions, evo)
	}
	if len(evolutions) == 0 {
		return nil, nil
	}
	return Value{
		"species":    t.species(ctx.Index),
		"species_id": ctx.Index,
		"evolutions": evolutions,
	}, nil
}

func decodeMoveData(raw []byte, ctx *Context) (Value, error) {
	t := ctx.Tables
	var typ, category, power, accuracy, pp byte
	if ctx.Generation <= 4 {
		category, power, typ, accuracy, pp = raw[2], raw[3], raw[4], raw[5], raw[6]
	} else {
		typ, category, power, accuracy, pp = raw[0], raw[2], raw[3], raw[4], raw[5]
	}
	v := Value{
		"move":     t.move(ctx.Index),
		"move_id":  ctx.Index,
		"type":     t.typeName(int(typ)),
		"category": MoveCategory(category, ctx.Generation),
		"pp":       int(pp),
	}
	if power > 0 {
		v["power"] = int(power)
	}
	if accuracy <= 100 {
		v["accuracy"] = int(accuracy)
	}
	if ctx.Generation >= 5 {
		if priority := int8(raw[6]); priority != 0 {
			v["priority"] = int(priority)
		}
		if hits := raw[7]; hits > 0 {
			v["hits"] = levelRange(int(hits&0x0F), int(hits>>4))
		}
		if chance := raw[10]; chance > 0 {
			v["effect_chance"] = fmt.Sprintf("%d%%", chance)
		}
	}
	return v, nil
}
