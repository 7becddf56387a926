package main

import (
	"os"

	"github.com/imgajeed76/sheetview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
