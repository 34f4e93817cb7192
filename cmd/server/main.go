package main

import (
	"os"

	"github.com/Brownie44l1/asr-api/cmd/server/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
