package main

import (
	"os"

	"github.com/arthur-debert/pkgmerge/cmd/pkgmerge/commands"
	"github.com/arthur-debert/pkgmerge/pkg/errors"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		commands.PrintError(rootCmd, err)
		os.Exit(errors.ExitCode(err))
	}
}
