// Package main is the entry point for the lab CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/labnotes/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
