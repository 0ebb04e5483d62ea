package main

import (
	"os"

	"github.com/EmbarkStudios/toml-span/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
