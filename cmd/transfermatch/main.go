package main

import (
	"os"

	"github.com/transfermatch-dev/transfermatch/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
