package main

import "github.com/ogulcanaydogan/slotwatch/internal/cli"

func main() {
	cli.Execute()
}
