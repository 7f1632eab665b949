// Author @gajzzs
package main

import (
	"fmt"
	"os"

	"github.com/gajzzs/sampleload/internal/app"
)

func main() {
	if err := app.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
