package main

import (
	"os"

	"github.com/loomkit/loom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
