// Command bfi runs Brainfuck programs.
package main

import (
	"os"

	"github.com/roach88/bfi/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
