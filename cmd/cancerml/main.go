// Command cancerml runs the breast cancer classification pipeline.
package main

import (
	"os"

	"cancerml/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
