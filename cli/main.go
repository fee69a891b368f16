// Command fnsql compiles query definition units into typed Go wrappers and
// generated tests.
package main

import (
	"os"

	"github.com/satishbabariya/fnsql-go/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
