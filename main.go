package main

import (
	"os"

	"github.com/minjae-ko/chatmarks/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
