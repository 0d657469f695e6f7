package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jcommit/jcommit/internal/pkg/errors"
	"github.com/jcommit/jcommit/internal/pkg/history"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_API_KEY", "JCOMMIT_API_KEY", "JCOMMIT_API_ENDPOINT", "JCOMMIT_MODEL",
		"JCOMMIT_IS_AZURE", "JCOMMIT_API_VERSION", "JCOMMIT_PROMPT",
		"JCOMMIT_HISTORY_ENABLED", "JCOMMIT_HISTORY_MAX_ENTRIES", "JCOMMIT_HISTORY_FILE_PATH",
	} {
		t.Setenv(name, "")
	}
}

// execute runs the CLI with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test", "none", "unknown")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGenerateFlags_Options(t *testing.T) {
	flags := &GenerateFlags{
		Hint:        "fixes #42",
		Body:        true,
		SummaryBase: "origin/main",
		Debug:       true,
	}

	opts := flags.Options(true)

	assert.Equal(t, "fixes #42", opts.Hint)
	assert.True(t, opts.IncludeBody)
	assert.Equal(t, "origin/main", opts.SummaryBase)
	assert.True(t, opts.Debug)
	assert.False(t, opts.AutoCommit)
	assert.False(t, opts.DryRun)
}

func TestProperty_GenerateFlags(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("an output file always implies a dry run", prop.ForAll(
		func(output string, dryRun, commit bool) bool {
			opts := (&GenerateFlags{OutputFile: output, DryRun: dryRun, Commit: commit}).Options(true)
			return opts.DryRun == (dryRun || output != "") && opts.OutputFile == output
		},
		gen.AlphaString(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.Property("--commit never prompts", prop.ForAll(
		func(commit, terminal bool) bool {
			flags := &GenerateFlags{Commit: commit}
			interactive := flags.interactive(terminal)
			if commit {
				return !interactive && flags.Options(terminal).AutoCommit
			}
			return interactive == terminal
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.Property("without a terminal only --commit can commit", prop.ForAll(
		func(commit, dryRun bool, output string) bool {
			opts := (&GenerateFlags{Commit: commit, DryRun: dryRun, OutputFile: output}).Options(false)
			willCommit := !opts.DryRun && opts.SummaryBase == ""
			return willCommit == (commit && !dryRun && output == "")
		},
		gen.Bool(),
		gen.Bool(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestGenerateFlags_NoTerminalWithoutCommit(t *testing.T) {
	flags := &GenerateFlags{}

	assert.False(t, flags.interactive(false))
	assert.True(t, flags.unattended(false))
	opts := flags.Options(false)
	assert.True(t, opts.DryRun)
	assert.False(t, opts.AutoCommit)

	flags.Commit = true
	assert.False(t, flags.unattended(false))
	opts = flags.Options(false)
	assert.False(t, opts.DryRun)
	assert.True(t, opts.AutoCommit)
}

func TestGenerateFlags_Validate(t *testing.T) {
	assert.NoError(t, (&GenerateFlags{}).Validate())
	assert.NoError(t, (&GenerateFlags{SummaryBase: "origin/main"}).Validate())

	err := (&GenerateFlags{SummaryBase: "--cached"}).Validate()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidArguments))
}

func TestRootCmd_RejectsOptionAsSummaryBase(t *testing.T) {
	_, err := execute(t, "-s", "-x")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrInvalidArguments))
}

func TestRootCmd_Flags(t *testing.T) {
	root := NewRootCmd("1.2.3", "abc", "today")

	for _, name := range []string{"message", "path", "body", "summary", "commit", "debug", "model", "dry-run", "output"} {
		assert.NotNil(t, root.Flags().Lookup(name), name)
	}
	for short, name := range map[string]string{"m": "message", "p": "path", "b": "body", "s": "summary", "c": "commit", "d": "debug", "o": "output"} {
		f := root.Flags().ShorthandLookup(short)
		require.NotNil(t, f, short)
		assert.Equal(t, name, f.Name)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	_, err := execute(t, "unexpected")
	assert.Error(t, err)
}

func TestRootCmd_Version(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "jcommit test")
}

func TestConfigCommands(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := execute(t, "config", "set", "model", "x", "--config", path)
	require.Error(t, err, "set requires an existing file")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = execute(t, "config", "init", "--config", path)
	assert.Error(t, err, "init refuses to overwrite")

	out, err = execute(t, "config", "set", "model", "llama3", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Set model = llama3")

	_, err = execute(t, "config", "set", "no_such_key", "1", "--config", path)
	assert.Error(t, err)

	out, err = execute(t, "config", "get", "model", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "llama3\n", out)

	const key = "sk-test-1234567890abcdef"
	out, err = execute(t, "config", "set", "api_key", key, "--config", path)
	require.NoError(t, err)
	assert.NotContains(t, out, key)

	out, err = execute(t, "config", "list", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "model = llama3")
	assert.Contains(t, out, "api_endpoint = https://api.openai.com/v1")
	assert.Contains(t, out, "api_key = ")
	assert.NotContains(t, out, key)
}

func TestHistoryCommands(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	historyPath := filepath.Join(dir, "history.json")

	_, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "config", "set", "history.file_path", historyPath, "--config", path)
	require.NoError(t, err)

	out, err := execute(t, "history", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No history entries found.")

	store := history.NewFileManager(historyPath, 10)
	require.NoError(t, store.Save(&history.Entry{Message: "feat: first", Mode: history.ModeStaged}))
	require.NoError(t, store.Save(&history.Entry{
		Message:   "feat: second",
		Mode:      history.ModeSummary,
		Base:      "main",
		Committed: false,
	}))

	out, err = execute(t, "history", "--limit", "1", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "feat: second")
	assert.Contains(t, out, "summary from main")
	assert.NotContains(t, out, "feat: first")

	out, err = execute(t, "history", "clear", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "History cleared successfully.")

	entries, err := store.List(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryDisabled(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	_, err = execute(t, "config", "set", "history.enabled", "false", "--config", path)
	require.NoError(t, err)

	out, err := execute(t, "history", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "History is disabled")
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "gpt-4o", displayValue("model", "gpt-4o"))
	assert.Equal(t, "", displayValue("api_key", ""))
	assert.NotEqual(t, "sk-abcdefghijklmnop", displayValue("api_key", "sk-abcdefghijklmnop"))
}
