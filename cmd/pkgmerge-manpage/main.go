// Command pkgmerge-manpage renders the pkgmerge man pages. With no argument
// the root page goes to stdout; with a directory every subcommand gets its
// own page there.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/pkgmerge/cmd/pkgmerge/commands"
	"github.com/arthur-debert/pkgmerge/internal/version"
)

func manHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "PKGMERGE",
		Section: "8",
		Source:  "pkgmerge " + version.Version,
		Manual:  "Package merge tools",
	}
}

func generate(dir string) error {
	root := commands.NewRootCmd()
	if dir == "" {
		return doc.GenMan(root, manHeader(), os.Stdout)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return doc.GenManTree(root, manHeader(), dir)
}

func main() {
	var dir string
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	if err := generate(dir); err != nil {
		fmt.Fprintf(os.Stderr, "pkgmerge-manpage: %v\n", err)
		os.Exit(1)
	}
}
