package main

import (
	"os"

	"accidentcli/cmd/accidents/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
