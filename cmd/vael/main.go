// Command vael is the engine's executable entry point (SPEC_FULL.md §6),
// grounded on the teacher's cmd/funxy/main.go: a thin main() that panics
// into a user-facing message instead of a Go stack trace, then hands off
// to the real dispatch logic.
package main

import (
	"fmt"
	"os"

	"github.com/vaelang/vael/pkg/cli"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "this is a bug, please report it")
			os.Exit(1)
		}
	}()
	os.Exit(cli.Run(os.Args[1:]))
}
