package main

import (
	"os"

	"github.com/dropped95si/alpha-terminal/cmd/terminal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
