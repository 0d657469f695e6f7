// Package git provides the Git operations jcommit needs: reading staged or
// branch-range diffs and recording commits.
package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	apperrors "github.com/jcommit/jcommit/internal/pkg/errors"
)

// DiffSource obtains the text of a pending change set.
type DiffSource interface {
	// StagedDiff returns the changes between HEAD and the index. An empty
	// string means nothing is staged.
	StagedDiff(ctx context.Context) (string, error)
	// SummaryDiff returns the changes between the tree of base and the
	// tree of HEAD. base may be a revision, a local branch, or a remote
	// branch, tried in that order.
	SummaryDiff(ctx context.Context, base string) (string, error)
}

// CommitWriter records a message as a new revision.
type CommitWriter interface {
	Commit(ctx context.Context, message string) error
}

// Client implements DiffSource and CommitWriter by running the git binary.
type Client struct {
	// path is any directory inside the working copy.
	path string
}

var (
	_ DiffSource   = (*Client)(nil)
	_ CommitWriter = (*Client)(nil)
)

// NewClient creates a Client for the working copy containing path.
// An empty path means the current directory.
func NewClient(path string) *Client {
	if path == "" {
		path = "."
	}
	return &Client{path: path}
}

// Path returns the directory the client operates in.
func (c *Client) Path() string {
	return c.path
}

// diffArgs keeps user configuration from changing the diff format.
var diffArgs = []string{"diff", "--no-color", "--no-ext-diff"}

// StagedDiff returns the normalized HEAD-vs-index diff.
func (c *Client) StagedDiff(ctx context.Context) (string, error) {
	if err := c.ensureRepository(ctx); err != nil {
		return "", err
	}

	out, err := c.output(ctx, append(diffArgs, "--cached")...)
	if err != nil {
		return "", err
	}
	return NormalizeDiff(out), nil
}

// SummaryDiff returns the normalized diff between base and HEAD.
func (c *Client) SummaryDiff(ctx context.Context, base string) (string, error) {
	if err := c.ensureRepository(ctx); err != nil {
		return "", err
	}

	rev, err := c.resolveBase(ctx, base)
	if err != nil {
		return "", err
	}

	out, err := c.output(ctx, append(diffArgs, rev, "HEAD", "--")...)
	if err != nil {
		return "", err
	}
	return NormalizeDiff(out), nil
}

// resolveBase resolves base as a revision, then a local branch, then a
// remote-tracking branch, returning the commit id.
func (c *Client) resolveBase(ctx context.Context, base string) (string, error) {
	if base == "" || strings.HasPrefix(base, "-") {
		return "", apperrors.NewRevisionNotFoundError(base)
	}

	candidates := []string{
		base,
		"refs/heads/" + base,
		"refs/remotes/" + base,
	}
	for _, candidate := range candidates {
		out, err := c.output(ctx, "rev-parse", "--verify", "--quiet", candidate+"^{commit}")
		if err == nil {
			return strings.TrimSpace(out), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
	}
	return "", apperrors.NewRevisionNotFoundError(base)
}

// Commit records the staged tree as a new commit on the current branch,
// parented on HEAD, using the repository's configured identity. The
// message is stored verbatim.
func (c *Client) Commit(ctx context.Context, message string) error {
	if err := c.ensureRepository(ctx); err != nil {
		return err
	}

	cmd := c.command(ctx, "commit", "--cleanup=verbatim", "--file=-")
	cmd.Stdin = strings.NewReader(message)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return apperrors.NewCommitFailedError(err, strings.TrimSpace(string(output)))
	}
	return nil
}

// CurrentBranch returns the name of the checked out branch, or "HEAD"
// when detached.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HeadCommit returns the commit id of HEAD.
func (c *Client) HeadCommit(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ensureRepository fails with NotARepository unless path is inside a
// working copy.
func (c *Client) ensureRepository(ctx context.Context) error {
	cmd := c.command(ctx, "rev-parse", "--git-dir")
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return apperrors.NewNotARepositoryError(c.path, errors.New(strings.TrimSpace(string(output))))
	}
	// git itself could not be started.
	return apperrors.NewGitError(err, "")
}

func (c *Client) command(ctx context.Context, args ...string) *exec.Cmd {
	full := append([]string{"-C", c.path}, args...)
	return exec.CommandContext(ctx, "git", full...)
}

// output runs git and returns stdout, wrapping failures with stderr.
func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	cmd := c.command(ctx, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperrors.NewGitError(err, strings.TrimSpace(stderr.String())).
			WithContext("command", "git "+strings.Join(args, " "))
	}
	return stdout.String(), nil
}
