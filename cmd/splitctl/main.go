package main

import "github.com/nohumanman/descenders-modding/internal/cli"

func main() {
	cli.Execute()
}
