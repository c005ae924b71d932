// Command foodtrust classifies ingredient declarations and looks up products
// from the command line.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
