package main

import (
	"os"

	"github.com/AmonApolonio/lookchat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
