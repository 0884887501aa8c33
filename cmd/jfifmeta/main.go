package main

import "github.com/bep/jfifmeta/internal/cli"

func main() {
	cli.Execute()
}
