package main

import (
	"os"

	"github.com/platewise/platewise/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
