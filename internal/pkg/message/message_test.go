package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected CommitMessage
	}{
		{
			name:     "empty",
			input:    "  \n\n",
			expected: CommitMessage{},
		},
		{
			name:     "subject only",
			input:    "feat: add login\n",
			expected: CommitMessage{Subject: "feat: add login"},
		},
		{
			name:     "subject and body",
			input:    "fix(api): handle nil\n\nThe handler panicked.\nNow it returns 400.",
			expected: CommitMessage{Subject: "fix(api): handle nil", Separated: true, Body: "The handler panicked.\nNow it returns 400."},
		},
		{
			name:     "missing separator",
			input:    "fix: a\nbody right away",
			expected: CommitMessage{Subject: "fix: a", Body: "body right away"},
		},
		{
			name:     "crlf",
			input:    "docs: x\r\n\r\nbody",
			expected: CommitMessage{Subject: "docs: x", Separated: true, Body: "body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.input))
		})
	}
}

func TestIsConventional(t *testing.T) {
	assert.True(t, Parse("feat: add x").IsConventional())
	assert.True(t, Parse("fix(core)!: drop y").IsConventional())
	assert.False(t, Parse("Add x").IsConventional())
	assert.False(t, Parse("feature: add x").IsConventional())
	assert.False(t, Parse("feat:add x").IsConventional())
}

func TestCheck(t *testing.T) {
	long := "feat: " + strings.Repeat("a", MaxSubjectLength)

	tests := []struct {
		name        string
		raw         string
		includeBody bool
		contains    []string
	}{
		{"clean subject", "feat: add parser", false, nil},
		{"clean with body", "feat: add parser\n\nSupports TOML.", true, nil},
		{"empty", "   ", false, []string{"empty"}},
		{"long subject", long, false, []string{"recommended max 72"}},
		{"no separator", "feat: a\nbody", true, []string{"blank line"}},
		{"unrequested body", "feat: a\n\nbody", false, []string{"none was requested"}},
		{"code fence", "```\nfeat: a\n```", false, []string{"code fence"}},
		{"not conventional", "Add parser", false, []string{"Conventional Commits"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := Check(tt.raw, tt.includeBody)
			if len(tt.contains) == 0 {
				assert.Empty(t, warnings)
				return
			}
			joined := strings.Join(warnings, "\n")
			for _, want := range tt.contains {
				assert.Contains(t, joined, want)
			}
		})
	}
}

func TestCheck_SubjectLengthCountsRunes(t *testing.T) {
	subject := "feat: " + strings.Repeat("é", MaxSubjectLength-6)
	assert.Empty(t, Check(subject, false))
}

func TestIsValidCommitType(t *testing.T) {
	for _, ct := range ValidCommitTypes {
		assert.True(t, IsValidCommitType(ct), ct)
	}
	assert.False(t, IsValidCommitType("feature"))
	assert.False(t, IsValidCommitType(""))
}
