// This is the entry point for the sindy binary.
package main

import (
	"fmt"
	"os"

	"github.com/vishalbelsare/sindy-3/pkg/cli"
)

func main() {
	err := cli.Run(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(cli.ExitCode(err))
}
