package crypto

// 第4世代の文字テーブル。コード値はUnicodeではなくゲーム独自の番号です。
var gen4Chars [0x200]string

// gen4Reverse は1文字に対応するコードの逆引きです。半角を優先して登録します
var gen4Reverse = map[rune]uint16{}

const (
	gen4Hiragana  = "　ぁあぃいぅうぇえぉおかがきぎくぐけげこごさざしじすずせぜそぞただちぢっつづてでとどなにぬねのはばぱひびぴふぶぷへべぺほぼぽまみむめもゃやゅゆょよらりるれろわをん"
	gen4Katakana  = "ァアィイゥウェエォオカガキギクグケゲコゴサザシジスズセゼソゾタダチヂッツヅテデトドナニヌネノハバパヒビピフブプヘベペホボポマミムメモャヤュユョヨラリルレロワヲン"
	gen4Fullwidth = "０１２３４５６７８９ＡＢＣＤＥＦＧＨＩＪＫＬＭＮＯＰＱＲＳＴＵＶＷＸＹＺａｂｃｄｅｆｇｈｉｊｋｌｍｎｏｐｑｒｓｔｕｖｗｘｙｚ"
	gen4Accented  = "ÀÁÂÃÄÅÆÇÈÉÊËÌÍÎÏÐÑÒÓÔÕÖ×ØÙÚÛÜÝÞßàáâãäåæçèéêëìíîïðñòóôõö÷øùúûüýþÿ"
)

var gen4Symbols = map[uint16]string{
	0x00E1: "！", 0x00E2: "？", 0x00E3: "、", 0x00E4: "。", 0x00E5: "…",
	0x00E6: "・", 0x00E7: "／", 0x00E8: "「", 0x00E9: "」", 0x00EA: "『",
	0x00EB: "』", 0x00EC: "（", 0x00ED: "）", 0x00EE: "♂", 0x00EF: "♀",
	0x00F0: "＋", 0x00F1: "ー", 0x00F2: "×", 0x00F3: "÷", 0x00F4: "＝",
	0x00F5: "～", 0x00F6: "：", 0x00F7: "；", 0x00F8: "．", 0x00F9: "，",
	0x00FA: "♠", 0x00FB: "♣", 0x00FC: "♥", 0x00FD: "♦", 0x00FE: "★",
	0x00FF: "◎", 0x0100: "○", 0x0101: "□", 0x0102: "△", 0x0103: "◇",
	0x0104: "＠", 0x0105: "♪", 0x0106: "％", 0x0107: "☀", 0x0108: "☁",
	0x0109: "☂", 0x010A: "☃", 0x0111: "円", 0x0118: "←", 0x0119: "↑",
	0x011A: "↓", 0x011B: "→", 0x011C: "►", 0x011D: "＆",

	0x019F: "Œ", 0x01A0: "œ", 0x01A1: "Ş", 0x01A2: "ş", 0x01A3: "ª",
	0x01A4: "º", 0x01A5: "er", 0x01A6: "re", 0x01A7: "r", 0x01A9: "¡",
	0x01AA: "¿",

	0x01AC: "!", 0x01AD: "?", 0x01AE: ",", 0x01AF: ".",
	0x01B0: "…", 0x01B1: "･", 0x01B2: "/", 0x01B3: "‘",
	0x01B4: "’", 0x01B5: "“", 0x01B6: "”", 0x01B7: "„",
	0x01B8: "«", 0x01B9: "»", 0x01BA: "(", 0x01BB: ")",
	0x01BC: "♂", 0x01BD: "♀", 0x01BE: "+", 0x01BF: "-",
	0x01C0: "*", 0x01C1: "#", 0x01C2: "=", 0x01C3: "&",
	0x01C4: "~", 0x01C5: ":", 0x01C6: ";", 0x01C7: "♠",
	0x01C8: "♣", 0x01C9: "♥", 0x01CA: "♦", 0x01CB: "★",
	0x01CC: "◎", 0x01CD: "○", 0x01CE: "□", 0x01CF: "△",
	0x01D0: "◇", 0x01D1: "@", 0x01D2: "♪", 0x01D3: "%",
	0x01D4: "☀", 0x01D5: "☁", 0x01D6: "☂", 0x01D7: "☃",
	0x01DE: " ", 0x01DF: "e",
	0x01E0: "PK", 0x01E1: "MN", 0x01E4: "°", 0x01E5: "_",
	0x01E6: "＿", 0x01E7: "․", 0x01E8: "‥",
}

// gen5Substitutions は第5世代で複数文字に展開されるコードです。デコード専用です
var gen5Substitutions = map[uint16]string{
	0x2467: "Mr.",
	0x2468: "Ms.",
	0x2469: "Mrs.",
	0x246D: "the",
	0x246E: "The",
	0x2486: "Poké",
	0x2487: "mon",
}

func init() {
	put := func(start uint16, chars string) {
		code := start
		for _, r := range chars {
			gen4Chars[code] = string(r)
			code++
		}
	}
	put(0x0001, gen4Hiragana)
	put(0x0052, gen4Katakana)
	put(0x00A2, gen4Fullwidth)
	put(0x0121, "0123456789")
	put(0x012B, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	put(0x0145, "abcdefghijklmnopqrstuvwxyz")
	put(0x015F, gen4Accented)
	for code, s := range gen4Symbols {
		gen4Chars[code] = s
	}

	// 半角の範囲を先に登録し、同じ文字を持つ全角記号より優先させる
	register := func(lo, hi uint16) {
		for code := lo; code <= hi; code++ {
			runes := []rune(gen4Chars[code])
			if len(runes) != 1 {
				continue
			}
			if _, ok := gen4Reverse[runes[0]]; !ok {
				gen4Reverse[runes[0]] = code
			}
		}
	}
	register(0x0121, 0x01FE)
	register(0x0001, 0x0120)
}

// gen4Rune はコードに対応する文字列を返します
func gen4Rune(code uint16) (string, bool) {
	if int(code) >= len(gen4Chars) {
		return "", false
	}
	s := gen4Chars[code]
	return s, s != ""
}
