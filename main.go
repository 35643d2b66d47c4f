package main

import (
	"os"

	"github.com/stackable-labs/stackable-backend/cmd/stackable/cmd"
)

func main() {
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
