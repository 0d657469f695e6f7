// Package main is the entry point for the jcommit CLI application.
// jcommit generates git commit messages from staged changes using an
// OpenAI-compatible chat completion endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/jcommit/jcommit/internal/cmd"
	apperrors "github.com/jcommit/jcommit/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		if apperrors.IsVerbose() {
			fmt.Fprint(os.Stderr, apperrors.FormatErrorVerbose(err))
		} else {
			fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		}
		os.Exit(apperrors.GetExitCode(err))
	}
}
