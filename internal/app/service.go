// Package app contains the application layer with business orchestration logic.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jcommit/jcommit/internal/pkg/ai"
	apperrors "github.com/jcommit/jcommit/internal/pkg/errors"
	"github.com/jcommit/jcommit/internal/pkg/git"
	"github.com/jcommit/jcommit/internal/pkg/history"
	"github.com/jcommit/jcommit/internal/pkg/message"
	"github.com/jcommit/jcommit/internal/pkg/ui"
)

// writeFile is a variable to allow mocking in tests.
var writeFile = os.WriteFile

// Generator turns a diff into a streamed commit message.
type Generator interface {
	Endpoint() string
	Model() string
	BuildConversation(diff, hint string, includeBody bool) ai.Conversation
	Stream(ctx context.Context, conv ai.Conversation) (ai.FragmentStream, error)
}

// NewGenerator adapts an ai.Service to Generator.
func NewGenerator(svc *ai.Service) Generator {
	return serviceGenerator{svc}
}

type serviceGenerator struct {
	*ai.Service
}

func (g serviceGenerator) Stream(ctx context.Context, conv ai.Conversation) (ai.FragmentStream, error) {
	stream, err := g.Service.Stream(ctx, conv)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// commitInspector is implemented by commit writers that can report where
// a commit landed.
type commitInspector interface {
	CurrentBranch(ctx context.Context) (string, error)
	HeadCommit(ctx context.Context) (string, error)
}

var _ commitInspector = (*git.Client)(nil)

// shortIDLength matches git's default abbreviation.
const shortIDLength = 7

// CommitOptions contains options for the commit workflow.
type CommitOptions struct {
	// Hint is free text that takes priority over what the diff suggests.
	Hint        string
	IncludeBody bool
	// SummaryBase switches to summary mode: the diff from SummaryBase to
	// HEAD is described and nothing is committed.
	SummaryBase string
	// AutoCommit commits without asking for confirmation.
	AutoCommit bool
	DryRun     bool
	// OutputFile receives the message instead of a commit.
	OutputFile string
	// Debug prints the conversation before it is sent.
	Debug bool
}

func (o *CommitOptions) summary() bool {
	return o.SummaryBase != ""
}

// CommitResult describes the outcome of a run.
type CommitResult struct {
	Message   string
	Committed bool
}

// CommitService orchestrates the commit message generation workflow.
type CommitService struct {
	diffSource   git.DiffSource
	commitWriter git.CommitWriter
	generator    Generator
	uiManager    ui.Manager
	historyMgr   history.Manager
}

// NewCommitService creates a new CommitService with the given dependencies.
// historyMgr may be nil to disable history.
func NewCommitService(
	diffSource git.DiffSource,
	commitWriter git.CommitWriter,
	generator Generator,
	uiManager ui.Manager,
	historyMgr history.Manager,
) *CommitService {
	return &CommitService{
		diffSource:   diffSource,
		commitWriter: commitWriter,
		generator:    generator,
		uiManager:    uiManager,
		historyMgr:   historyMgr,
	}
}

// GenerateAndCommit orchestrates the complete commit message workflow.
// Workflow: get diff → build conversation → stream message → warn → commit/save
func (s *CommitService) GenerateAndCommit(ctx context.Context, opts *CommitOptions) (*CommitResult, error) {
	if opts == nil {
		opts = &CommitOptions{}
	}

	diff, err := s.readDiff(ctx, opts)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(diff) == "" {
		return nil, apperrors.NewNoChangesError(opts.summary())
	}

	conv := s.generator.BuildConversation(diff, opts.Hint, opts.IncludeBody)
	if opts.Debug {
		s.uiManager.DisplayConversation(conv)
	}

	msg, err := s.generate(ctx, conv)
	if err != nil {
		return nil, err
	}

	for _, warning := range message.Check(msg, opts.IncludeBody) {
		s.uiManager.ShowWarning(warning)
	}

	result := &CommitResult{Message: msg}
	err = s.handleMessage(ctx, opts, result)
	s.saveHistory(opts, diff, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *CommitService) readDiff(ctx context.Context, opts *CommitOptions) (string, error) {
	spinner := s.uiManager.ShowSpinner("Reading changes...")
	spinner.Start()
	defer spinner.Stop()

	if opts.summary() {
		return s.diffSource.SummaryDiff(ctx, opts.SummaryBase)
	}
	return s.diffSource.StagedDiff(ctx)
}

// generate streams the message to the UI. The spinner runs until the
// first fragment arrives.
func (s *CommitService) generate(ctx context.Context, conv ai.Conversation) (string, error) {
	spinner := s.uiManager.ShowSpinner("Generating commit message...")
	spinner.Start()
	spinning := true
	stopSpinner := func() {
		if spinning {
			spinner.Stop()
			spinning = false
		}
	}
	defer stopSpinner()

	stream, err := s.generator.Stream(ctx, conv)
	if err != nil {
		return "", err
	}

	msg, err := ai.Collect(stream, func(fragment string) {
		stopSpinner()
		s.uiManager.StreamFragment(fragment)
	})
	if !spinning {
		s.uiManager.EndStream()
	}
	if err != nil {
		return "", err
	}
	return msg, nil
}

// handleMessage commits the message, writes it to a file, or leaves it
// printed, depending on opts.
func (s *CommitService) handleMessage(ctx context.Context, opts *CommitOptions, result *CommitResult) error {
	if opts.OutputFile != "" {
		return s.writeToFile(opts.OutputFile, result.Message)
	}
	if opts.summary() || opts.DryRun {
		return nil
	}

	if !opts.AutoCommit {
		confirmed, err := s.uiManager.PromptConfirm("Commit with this message?")
		if err != nil {
			return fmt.Errorf("failed to prompt user: %w", err)
		}
		if !confirmed {
			s.uiManager.ShowWarning("Commit cancelled")
			return nil
		}
	}

	spinner := s.uiManager.ShowSpinner("Committing changes...")
	spinner.Start()
	err := s.commitWriter.Commit(ctx, result.Message)
	spinner.Stop()
	if err != nil {
		return err
	}

	result.Committed = true
	s.uiManager.ShowSuccess(s.commitSummary(ctx))
	return nil
}

func (s *CommitService) commitSummary(ctx context.Context) string {
	inspector, ok := s.commitWriter.(commitInspector)
	if !ok {
		return "Successfully committed!"
	}

	summary := "Committed"
	if id, err := inspector.HeadCommit(ctx); err == nil && id != "" {
		if len(id) > shortIDLength {
			id = id[:shortIDLength]
		}
		summary += " " + id
	}
	if branch, err := inspector.CurrentBranch(ctx); err == nil && branch != "" {
		summary += " on " + branch
	}
	return summary
}

// saveHistory records the generated message. Failures are warnings.
func (s *CommitService) saveHistory(opts *CommitOptions, diff string, result *CommitResult) {
	if s.historyMgr == nil {
		return
	}

	entry := &history.Entry{
		Message:     result.Message,
		DiffSummary: git.Stats(diff).String(),
		Model:       s.generator.Model(),
		Endpoint:    s.generator.Endpoint(),
		Mode:        history.ModeStaged,
		Committed:   result.Committed,
	}
	if opts.summary() {
		entry.Mode = history.ModeSummary
		entry.Base = opts.SummaryBase
	}

	if err := s.historyMgr.Save(entry); err != nil {
		apperrors.Warn("failed to save history: %v", err)
		s.uiManager.ShowWarning(fmt.Sprintf("failed to save to history: %v", err))
	}
}

// writeToFile writes the commit message to a file.
func (s *CommitService) writeToFile(filePath, content string) error {
	if err := writeFile(filePath, []byte(content), 0644); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileSystemError,
			fmt.Sprintf("failed to write to file %s", filePath))
	}

	s.uiManager.ShowSuccess(fmt.Sprintf("Message written to %s", filePath))
	return nil
}
