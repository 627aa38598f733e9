// Package main provides the lazyrel CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/lazyrel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
