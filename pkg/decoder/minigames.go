package decoder

import "fmt"

var pokeathlonStats = []string{"Speed", "Power", "Skill", "Stamina", "Jump"}

// pokeathlonRanges は各能力の最小値と最大値の位置です
var pokeathlonRanges = [][2]int{{5, 10}, {11, 12}, {13, 14}, {15, 16}, {17, 18}}

func decodePokeathlon(raw []byte, ctx *Context) (Value, error) {
	if len(raw) != 20 {
		return nil, fmt.Errorf("%w: pokeathlon record must be 20 bytes, got %d", ErrShortRecord, len(raw))
	}
	stats := map[string]string{}
	for i, name := range pokeathlonStats {
		lo, hi := int(raw[pokeathlonRanges[i][0]])+1, int(raw[pokeathlonRanges[i][1]])+1
		if lo == hi {
			stats[name] = fmt.Sprintf("%d*", lo)
		} else {
			stats[name] = fmt.Sprintf("%d/%d*", lo, hi)
		}
	}
	return Value{
		"species":    ctx.Tables.species(ctx.Index),
		"species_id": ctx.Index,
		"facility":   "Pokéathlon",
		"stats":      stats,
	}, nil
}

const (
	contestEntrySize     = 96
	contestSpeciesOffset = 8
	contestMovesOffset   = 12
)

func decodeContest(raw []byte, ctx *Context) (Value, error) {
	t := ctx.Tables
	var entries []Value
	for off := 0; off+contestEntrySize <= len(raw); off += contestEntrySize {
		rec := raw[off : off+contestEntrySize]
		species := u16(rec, contestSpeciesOffset)
		if species == 0 {
			continue
		}
		e := Value{"species": t.species(species), "species_id": species}
		var moves []string
		for m := 0; m < 4; m++ {
			if id := u16(rec, contestMovesOffset+m*2); id > 0 {
				moves = append(moves, t.move(id))
			}
		}
		if len(moves) > 0 {
			e["moves"] = moves
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	facility := ctx.Label
	if facility == "" {
		facility = "Contest Hall"
	}
	return Value{"facility": facility, "count": len(entries), "pokemon": entries}, nil
}
