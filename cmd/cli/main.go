package main

import (
	"os"

	"github.com/branchd-dev/authgate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
