// Command linkplay はポケモンのROMイメージの中身を読み出し、解読し、書き換えます
package main

func main() {
	execute()
}
