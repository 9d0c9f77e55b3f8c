package main

import (
	"os"

	"github.com/abhisek/sketchquiz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
