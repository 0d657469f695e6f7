// Package cmd contains the CLI command definitions for jcommit.
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the jcommit CLI.
func NewRootCmd(version, commitHash, date string) *cobra.Command {
	flags := &GenerateFlags{}

	rootCmd := &cobra.Command{
		Use:   "jcommit",
		Short: "Generate git commit messages with a chat completion API",
		Long: `jcommit sends your staged changes to an OpenAI-compatible chat completion
endpoint and streams back a commit message. After you confirm it, the
message is committed as is.

With --summary, jcommit describes every change between a base revision
and HEAD instead, for pull request descriptions or squash messages.
Summaries are printed and never committed.

Examples:
  jcommit                          # Generate, confirm, commit
  jcommit -m "fixes #42" -b        # Add a hint and ask for a body
  jcommit -c                       # Commit without asking
  jcommit -s origin/main           # Describe the branch against origin/main
  jcommit --dry-run -o msg.txt     # Save the message to a file`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags)
		},
	}

	rootCmd.SetVersionTemplate(`jcommit {{.Version}}
Commit: ` + commitHash + `
Built:  ` + date + "\n")

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: ~/.jcommit.toml)")

	rootCmd.Flags().StringVarP(&flags.Hint, "message", "m", "", "Hint that takes priority over what the diff suggests")
	rootCmd.Flags().StringVarP(&flags.Path, "path", "p", ".", "Path inside the repository")
	rootCmd.Flags().BoolVarP(&flags.Body, "body", "b", false, "Ask for a message body")
	rootCmd.Flags().StringVarP(&flags.SummaryBase, "summary", "s", "", "Describe the changes from this base revision to HEAD")
	rootCmd.Flags().BoolVarP(&flags.Commit, "commit", "c", false, "Commit without confirmation")
	rootCmd.Flags().BoolVarP(&flags.Debug, "debug", "d", false, "Print the conversation before sending it")
	rootCmd.Flags().StringVar(&flags.Model, "model", "", "Model id, or deployment name with Azure")
	rootCmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Generate the message without committing")
	rootCmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Write the message to a file (implies --dry-run)")

	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewHistoryCmd())

	return rootCmd
}
