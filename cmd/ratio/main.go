// Command ratio computes exact production chain rates.
package main

import (
	"os"

	"github.com/roach88/ratio/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
