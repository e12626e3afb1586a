package main

import "github.com/andrescamacho/bob-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
