// Command walflow runs the piping network editor backend.
package main

import (
	"os"

	"walflow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
