package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/deftsilo/cmd/deftsilo"
	"github.com/arthur-debert/deftsilo/internal/version"
)

// Writes deftsilo(1) to stdout, or one page per command into the directory
// given as the only argument.
func main() {
	rootCmd := deftsilo.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "DEFTSILO",
		Section: "1",
		Source:  "deftsilo " + version.Version,
		Manual:  "deftsilo manual",
	}

	var err error
	switch len(os.Args) {
	case 1:
		err = doc.GenMan(rootCmd, header, os.Stdout)
	case 2:
		err = doc.GenManTree(rootCmd, header, os.Args[1])
	default:
		fmt.Fprintf(os.Stderr, "Usage: %s [output-dir]\n", os.Args[0])
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
