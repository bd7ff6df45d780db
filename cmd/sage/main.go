package main

import "github.com/Libretto-Pic/the-sage-game/cmd/sage/root"

func main() {
	root.Execute()
}
