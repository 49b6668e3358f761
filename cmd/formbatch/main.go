package main

import (
	"os"

	"github.com/joseph-ayodele/formbatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
