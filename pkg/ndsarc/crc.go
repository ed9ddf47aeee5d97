package ndsarc

// crc16Table はNDSヘッダーで使われるCRC-16 (多項式 0xA001, 初期値 0xFFFF) のテーブルです
var crc16Table = func() [256]uint16 {
	var table [256]uint16
	for i := range table {
		c := uint16(i)
		for j := 0; j < 8; j++ {
			if c&1 != 0 {
				c = c>>1 ^ 0xA001
			} else {
				c >>= 1
			}
		}
		table[i] = c
	}
	return table
}()

// CRC16 はデータのCRC-16を計算します
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc = crc>>8 ^ crc16Table[byte(crc)^b]
	}
	return crc
}
