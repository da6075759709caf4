package main

import (
	"os"

	"github.com/elilinden/Support-bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
