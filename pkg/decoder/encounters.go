package decoder

import "fmt"

const (
	gen5EncounterSize = 232
	dppEncounterSize  = 424
	hgssEncounterSize = 196
)

type slotGroup struct {
	name   string
	offset int
	count  int
}

var gen5Groups = []slotGroup{
	{"grass", 8, 12}, {"double_grass", 56, 12}, {"special_grass", 104, 12},
	{"surf", 152, 5}, {"special_surf", 172, 5},
	{"fishing", 192, 5}, {"special_fishing", 212, 5},
}

var seasonNames = []string{"Spring", "Summer", "Fall", "Winter"}

func decodeEncounters(raw []byte, ctx *Context) (Value, error) {
	var v Value
	switch {
	case ctx.Generation >= 5:
		v = decodeGen5Encounters(raw, ctx.Tables)
	case len(raw) == hgssEncounterSize:
		v = decodeHGSSEncounters(raw, ctx.Tables)
	case len(raw) == dppEncounterSize:
		v = decodeDPPEncounters(raw, ctx.Tables)
	default:
		return nil, fmt.Errorf("%w: encounter table of %d bytes", ErrShortRecord, len(raw))
	}
	if v == nil {
		return nil, nil
	}
	if ctx.Tables.Has(TableLocations, ctx.Index) {
		v["location"] = ctx.Tables[TableLocations][ctx.Index]
	}
	return v, nil
}

func decodeGen5Encounters(raw []byte, t Tables) Value {
	n := len(raw) / gen5EncounterSize
	seasons := make([]Value, 0, n)
	for s := 0; s < n; s++ {
		rec := raw[s*gen5EncounterSize : (s+1)*gen5EncounterSize]
		rates := map[string]int{}
		season := Value{"rates": rates}
		for i, g := range gen5Groups {
			rate := int(rec[i])
			if rate == 0 {
				continue
			}
			rates[g.name] = rate
			if entries := gen5Slots(rec, g, t); len(entries) > 0 {
				season[g.name] = entries
			}
		}
		if n == 1 {
			return season
		}
		season["season"] = fmt.Sprintf("Season %d", s+1)
		if s < len(seasonNames) {
			season["season"] = seasonNames[s]
		}
		seasons = append(seasons, season)
	}
	return Value{"seasons": seasons}
}

// gen5Slots は種族番号の上位5ビットにフォルムを持つスロットを読みます
func gen5Slots(rec []byte, g slotGroup, t Tables) []Value {
	var out []Value
	for j := 0; j < g.count; j++ {
		pos := g.offset + j*4
		raw := u16(rec, pos)
		species, form := raw&0x7FF, raw>>11
		if species == 0 {
			continue
		}
		name := t.species(species)
		if form > 0 {
			name = fmt.Sprintf("%s (form %d)", name, form)
		}
		out = append(out, Value{"species": name, "level": levelRange(int(rec[pos+2]), int(rec[pos+3]))})
	}
	return out
}

var dppWaterSections = []string{"surf", "surf_special", "old_rod", "good_rod", "super_rod"}

func decodeDPPEncounters(raw []byte, t Tables) Value {
	v := Value{}
	if rate := int(u32(raw, 0)); rate > 0 {
		var grass []Value
		for i := 0; i < 12; i++ {
			pos := 4 + i*8
			species := int(u32(raw, pos+4))
			if species == 0 {
				continue
			}
			grass = append(grass, Value{"species": t.species(species), "level": int(u32(raw, pos))})
		}
		if len(grass) > 0 {
			v["grass"] = grass
			v["grass_rate"] = rate
		}
	}

	replacements := []struct {
		name   string
		offset int
		count  int
	}{
		{"swarm", 100, 2}, {"day_replacements", 108, 2}, {"night_replacements", 116, 2}, {"radar", 124, 4},
	}
	for _, r := range replacements {
		var species []string
		for i := 0; i < r.count; i++ {
			if id := int(u32(raw, r.offset+i*4)); id > 0 {
				species = append(species, t.species(id))
			}
		}
		if len(species) > 0 {
			v[r.name] = species
		}
	}

	off := 204
	for _, name := range dppWaterSections {
		rate := u32(raw, off)
		off += 4
		if rate > 0 {
			var entries []Value
			for i := 0; i < 5; i++ {
				pos := off + i*8
				species := u16(raw, pos+4)
				if species == 0 {
					continue
				}
				entries = append(entries, Value{"species": t.species(species), "level": levelRange(int(raw[pos+1]), int(raw[pos]))})
			}
			if len(entries) > 0 {
				v[name] = entries
			}
		}
		off += 40
	}
	if len(v) == 0 {
		return nil
	}
	return v
}

func decodeHGSSEncounters(raw []byte, t Tables) Value {
	v := Value{}
	if rate := int(raw[0]); rate > 0 {
		grass := Value{}
		for ti, period := range []string{"morning", "day", "night"} {
			base := 20 + ti*24
			var species []Value
			for i := 0; i < 12; i++ {
				if id := u16(raw, base+i*2); id > 0 {
					species = append(species, Value{"species": t.species(id), "level": int(raw[8+i])})
				}
			}
			if len(species) > 0 {
				grass[period] = species
			}
		}
		if len(grass) > 0 {
			v["grass"] = grass
			v["grass_rate"] = rate
		}
	}

	var sound []string
	for i := 0; i < 4; i++ {
		if id := u16(raw, 92+i*2); id > 0 {
			sound = append(sound, t.species(id))
		}
	}
	if len(sound) > 0 {
		v["sound"] = sound
	}

	water := []slotGroup{{"surf", 100, 5}, {"rock_smash", 120, 2}, {"old_rod", 128, 5}, {"good_rod", 148, 5}, {"super_rod", 168, 5}}
	for i, g := range water {
		if raw[1+i] == 0 {
			continue
		}
		var entries []Value
		for j := 0; j < g.count; j++ {
			pos := g.offset + j*4
			if id := u16(raw, pos+2); id > 0 {
				entries = append(entries, Value{"species": t.species(id), "level": levelRange(int(raw[pos]), int(raw[pos+1]))})
			}
		}
		if len(entries) > 0 {
			v[g.name] = entries
		}
	}
	if len(v) == 0 {
		return nil
	}
	return v
}
