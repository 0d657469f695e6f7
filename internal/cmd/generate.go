package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcommit/jcommit/internal/app"
	"github.com/jcommit/jcommit/internal/pkg/ai"
	"github.com/jcommit/jcommit/internal/pkg/config"
	apperrors "github.com/jcommit/jcommit/internal/pkg/errors"
	"github.com/jcommit/jcommit/internal/pkg/git"
	"github.com/jcommit/jcommit/internal/pkg/history"
	"github.com/jcommit/jcommit/internal/pkg/security"
	"github.com/jcommit/jcommit/internal/pkg/ui"
)

// GenerateFlags holds the flags of the root command.
type GenerateFlags struct {
	Hint        string
	Path        string
	Body        bool
	SummaryBase string
	Commit      bool
	Debug       bool
	Model       string
	DryRun      bool
	OutputFile  string
}

// Validate rejects flag values that cannot name what they describe.
func (f *GenerateFlags) Validate() error {
	if strings.HasPrefix(f.SummaryBase, "-") {
		return apperrors.NewInvalidArgumentsError(
			fmt.Sprintf("--summary expects a base revision, got %q", f.SummaryBase))
	}
	return nil
}

// Options converts the flags to workflow options. An output file implies
// a dry run. Without a terminal nobody can confirm, so only --commit
// commits there.
func (f *GenerateFlags) Options(terminal bool) *app.CommitOptions {
	return &app.CommitOptions{
		Hint:        f.Hint,
		IncludeBody: f.Body,
		SummaryBase: f.SummaryBase,
		AutoCommit:  f.Commit,
		DryRun:      f.DryRun || f.OutputFile != "" || (!terminal && !f.Commit),
		OutputFile:  f.OutputFile,
		Debug:       f.Debug,
	}
}

// unattended reports whether a plain run would have asked for confirmation
// but cannot because there is no terminal.
func (f *GenerateFlags) unattended(terminal bool) bool {
	return !terminal && !f.Commit && !f.DryRun && f.OutputFile == "" && f.SummaryBase == ""
}

// interactive reports whether prompts and styled output should be used.
func (f *GenerateFlags) interactive(terminal bool) bool {
	return terminal && !f.Commit
}

// runGenerate executes the root command.
func runGenerate(cmd *cobra.Command, flags *GenerateFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := flags.Validate(); err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	configPath, _ := cmd.Flags().GetString("config")

	apperrors.SetVerbose(verbose)

	cfgMgr, err := config.NewManager(configPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to create config manager")
	}
	if configPath != "" {
		apperrors.Debug("Using custom config path: %s", configPath)
	}

	// Flags take priority over env, file, and defaults without being persisted.
	if flags.Model != "" {
		cfgMgr.SetOverride("model", flags.Model)
		apperrors.Debug("Model overridden via flag: %s", flags.Model)
	}

	cfg, err := cfgMgr.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	svc := ai.NewService(cfg.Service())

	terminal := ui.IsInteractive()

	var uiMgr ui.Manager
	if flags.interactive(terminal) {
		uiMgr = ui.NewDefaultManager(cfg.UI.ColorEnabled)
	} else {
		uiMgr = ui.NewNonInteractiveManager()
	}
	if flags.unattended(terminal) {
		uiMgr.ShowWarning("not running in a terminal; the message is printed but not committed (use -c to commit)")
	}

	if cfg.APIKey == "" && security.RequiresAPIKey(svc.Endpoint()) {
		uiMgr.ShowWarning("no API key configured for " + security.SanitizeForLogging(svc.Endpoint()) +
			"; set OPENAI_API_KEY or run 'jcommit config init --interactive'")
	}
	if !cfg.Security.NoticeAcknowledged {
		showDiffNotice(cfgMgr, uiMgr)
	}

	apperrors.Info("Using endpoint: %s", security.SanitizeForLogging(svc.Endpoint()))
	apperrors.Info("Using model: %s", svc.Model())
	if cfg.APIKey != "" {
		apperrors.Info("API key: %s", security.MaskAPIKey(cfg.APIKey))
	}

	gitClient := git.NewClient(flags.Path)

	var historyMgr history.Manager
	if cfg.History.Enabled {
		historyMgr = history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries)
	}

	service := app.NewCommitService(gitClient, gitClient, app.NewGenerator(svc), uiMgr, historyMgr)

	_, err = service.GenerateAndCommit(ctx, flags.Options(terminal))
	return err
}

// showDiffNotice prints the data notice once and records that it was shown.
func showDiffNotice(cfgMgr *config.ViperManager, uiMgr ui.Manager) {
	uiMgr.ShowWarning(security.DiffNotice)
	if err := cfgMgr.AcknowledgeNotice(); err != nil {
		apperrors.Warn("Failed to save notice acknowledgment: %v", err)
	}
}

// errNoConfig is returned by commands that need an existing config file.
func errNoConfig(path string) error {
	return apperrors.NewInvalidConfigError(fmt.Sprintf("config file not found at %s", path)).
		WithSuggestion("Run 'jcommit config init' first")
}
