package main

import (
	"os"

	"github.com/backkem/adbpair/cmd/adbpair/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
