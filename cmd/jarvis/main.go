package main

import (
	"os"

	"github.com/dan-solli/jarvis-core/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
