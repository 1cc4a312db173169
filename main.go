// The main package for the ycrawler executable.
package main

import (
	"github.com/bormog/ycrawler/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
