package session

import (
	"strings"

	"github.com/Creative-Genius2/LinkPlay/pkg/decoder"
)

// indexMarks は決まった番号に決まった文字列を持つテーブルです
var indexMarks = []struct {
	table string
	marks map[int]string
}{
	{decoder.TableSpecies, map[int]string{1: "Bulbasaur", 4: "Charmander"}},
	{decoder.TableMoves, map[int]string{1: "Pound", 5: "Mega Punch"}},
	{decoder.TableItems, map[int]string{1: "Master Ball", 17: "Potion"}},
	{decoder.TableAbilities, map[int]string{1: "Stench", 22: "Intimidate"}},
	{decoder.TableNatures, map[int]string{0: "Hardy", 1: "Lonely", 3: "Adamant"}},
	{decoder.TableTypes, map[int]string{0: "Normal", 1: "Fighting", 2: "Flying"}},
}

// contentMarks は特定の文字列をすべて含むテーブルです
var contentMarks = []struct {
	table string
	marks []string
}{
	{decoder.TableTrainerClasses, []string{"Youngster", "Lass", "School Kid"}},
	{decoder.TableLocations, []string{"Mystery Zone"}},
}

// descriptionOf は説明文のテーブルと、その隣にある名前のテーブルの対応です
var descriptionOf = []struct {
	table string
	names string
}{
	{decoder.TableItemDescriptions, decoder.TableItems},
	{decoder.TableMoveDescriptions, decoder.TableMoves},
	{decoder.TableAbilityDescriptions, decoder.TableAbilities},
}

const (
	minTrainerNames      = 100
	descriptionCountDiff = 10
	descriptionSample    = 20
	minDescriptionLength = 20
)

// normalizeText は比較用に大文字小文字と前後の空白、性格の定型句を取り除きます
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimSpace(strings.TrimSuffix(s, " nature."))
}

// identifyTables は復号したファイルの内容からテーブル名を判別します。
// 番号と文字列の組で判別できるものを先に決め、残りを内容と位置関係から決めます。
func (s *Session) identifyTables(ts *textState) {
	all := make(map[int][]string, ts.count)
	for i := 0; i < ts.count; i++ {
		if texts, err := s.textFile(i); err == nil {
			all[i] = texts
		}
	}
	assign := func(name string, file int) {
		ts.names[name] = file
		ts.byFile[file] = name
	}
	free := func(file int) bool {
		_, taken := ts.byFile[file]
		_, ok := all[file]
		return ok && !taken
	}

	for _, im := range indexMarks {
		for i := 0; i < ts.count; i++ {
			if free(i) && hasIndexMarks(all[i], im.marks) {
				assign(im.table, i)
				break
			}
		}
	}
	for _, cm := range contentMarks {
		for i := 0; i < ts.count; i++ {
			if free(i) && containsAll(all[i], cm.marks) {
				assign(cm.table, i)
				break
			}
		}
	}

	if classes, ok := ts.names[decoder.TableTrainerClasses]; ok {
		for _, d := range []int{-1, -2, 1, 2} {
			if f := classes + d; free(f) && len(all[f]) > minTrainerNames {
				assign(decoder.TableTrainerNames, f)
				break
			}
		}
	}
	for _, desc := range descriptionOf {
		base, ok := ts.names[desc.names]
		if !ok {
			continue
		}
		for _, d := range []int{1, -1} {
			f := base + d
			if free(f) && abs(len(all[f])-len(all[base])) < descriptionCountDiff && averageLength(all[f], descriptionSample) > minDescriptionLength {
				assign(desc.table, f)
				break
			}
		}
	}
}

func hasIndexMarks(texts []string, marks map[int]string) bool {
	for i, want := range marks {
		if i >= len(texts) || normalizeText(texts[i]) != normalizeText(want) {
			return false
		}
	}
	return true
}

func containsAll(texts []string, marks []string) bool {
	seen := make(map[string]bool, len(texts))
	for _, t := range texts {
		seen[normalizeText(t)] = true
	}
	for _, m := range marks {
		if !seen[normalizeText(m)] {
			return false
		}
	}
	return true
}

// averageLength は先頭 n 件の平均文字数を返します
func averageLength(texts []string, n int) float64 {
	if len(texts) < n {
		n = len(texts)
	}
	if n == 0 {
		return 0
	}
	total := 0
	for _, t := range texts[:n] {
		total += len([]rune(t))
	}
	return float64(total) / float64(n)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
