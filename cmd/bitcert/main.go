// Package main is the entry point for the bitcert CLI.
package main

import (
	"os"

	"github.com/dssim-tools/bitcert/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
