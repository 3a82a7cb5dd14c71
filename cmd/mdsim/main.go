package main

import (
	"os"

	"github.com/rustyeddy/mdsim/cmd/mdsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
