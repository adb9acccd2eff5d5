package main

import "github.com/vpetrenko/cutplan/internal/cli"

func main() {
	cli.Main()
}
