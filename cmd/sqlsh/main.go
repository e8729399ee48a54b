// Package main provides the sqlsh command.
package main

import (
	"os"

	"github.com/leapstack-labs/sqlsh/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
