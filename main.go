package main

import (
	"os"

	"github.com/dehy/garnish/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
