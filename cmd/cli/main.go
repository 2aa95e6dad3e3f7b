package main

import (
	"os"

	"github.com/alumnihub-dev/alumnihub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
