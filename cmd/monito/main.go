package main

import (
	"os"

	"github.com/badno/monito/cmd/monito/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
