package main

import (
	"fmt"
	"os"

	"github.com/fathom-search/fathom-cli/internal/adapters/driving/cli"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
