// Command anxiety serves and runs GAD-7 anxiety level predictions.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Logger may not be initialized when flag parsing or config fails.
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
