// Command researcher builds the heritage-site dataset.
package main

import (
	"fmt"
	"os"

	"github.com/unlockegypt/heritage-researcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
