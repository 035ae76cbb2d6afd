package main

import (
	"os"

	"github.com/lyoapp/lyo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
