// Package ndsarc はニンテンドーDSのROMイメージを仮想ファイルシステムとして扱うパッケージです。
//
// ヘッダー、FNT (ファイル名テーブル)、FAT (ファイル割り当てテーブル) からフォルダツリーを復元し、
// NARC形式のファイルはコンテナとして要求時に展開します。
// ARM9/ARM7 のコード領域は arm9.bin / arm7.bin、オーバーレイは overlay9/ と overlay7/ に見えます。
// コンテナのメンバーは "a/0/0/2:15" のように番号で指定します。
//
// 基本的な使い方:
//
//	tree, err := ndsarc.Open(image)
//	if err != nil {
//	    return err
//	}
//	loc, err := tree.Locate("poketool/personal/personal.narc:1")
//	data, err := tree.Bytes(loc)
//
// GBA/GBのイメージは rom.bin のみを持つ平坦なツリーとして開きます。
package ndsarc

import (
	"path"
	"strconv"
	"strings"
)

// Kind はノードの種類です
type Kind int

const (
	KindFolder Kind = iota
	KindFile
	KindContainer
)

// String は種類名を返します
func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindFile:
		return "file"
	case KindContainer:
		return "container"
	}
	return "unknown"
}

// MarshalText は種類名をテキストとして返します
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// 名前を持たない領域のファイルID
const (
	FileIDARM9  = -1
	FileIDARM7  = -2
	FileIDImage = -3
)

const (
	ARM9Name  = "arm9.bin"
	ARM7Name  = "arm7.bin"
	ImageName = "rom.bin"

	memberSeparator = ":"
)

// CleanPath はパスを "a/b/c" の形に正規化します。ルートは空文字列です
func CleanPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

// SplitMemberPath は "dir/file.narc:15" をコンテナのパスとメンバー番号に分けます。
// メンバー指定が無い場合は -1 を返します。
func SplitMemberPath(p string) (string, int) {
	i := strings.LastIndex(p, memberSeparator)
	if i < 0 {
		return CleanPath(p), -1
	}
	n, err := strconv.Atoi(p[i+1:])
	if err != nil || n < 0 {
		return CleanPath(p), -1
	}
	return CleanPath(p[:i]), n
}

// MemberPath はコンテナのパスとメンバー番号を結合します
func MemberPath(container string, index int) string {
	return container + memberSeparator + strconv.Itoa(index)
}
