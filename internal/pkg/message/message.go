// Package message inspects generated commit messages and reports
// non-blocking warnings. It never rewrites a message.
package message

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSubjectLength is the recommended maximum length for commit subject lines.
const MaxSubjectLength = 72

// ValidCommitTypes contains all Conventional Commits types.
var ValidCommitTypes = []string{
	"feat", "fix", "docs", "style", "refactor",
	"test", "chore", "perf", "ci", "build", "revert",
}

// conventionalSubjectRegex matches <type>(<scope>)!: <subject>.
var conventionalSubjectRegex = regexp.MustCompile(`^([a-z]+)(\([^)]+\))?!?: \S`)

// CommitMessage is a message split into subject and body.
type CommitMessage struct {
	Subject string
	// Separated reports whether a blank line follows the subject.
	Separated bool
	Body      string
}

// Parse splits raw into subject and body. Leading and trailing blank
// lines are ignored.
func Parse(raw string) CommitMessage {
	text := strings.Trim(raw, "\r\n\t ")
	if text == "" {
		return CommitMessage{}
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	cm := CommitMessage{Subject: strings.TrimSpace(lines[0])}
	if len(lines) == 1 {
		return cm
	}

	rest := lines[1:]
	if strings.TrimSpace(rest[0]) == "" {
		cm.Separated = true
		rest = rest[1:]
	}
	cm.Body = strings.TrimSpace(strings.Join(rest, "\n"))
	return cm
}

// IsConventional reports whether the subject uses a known Conventional
// Commits type.
func (cm CommitMessage) IsConventional() bool {
	m := conventionalSubjectRegex.FindStringSubmatch(cm.Subject)
	if m == nil {
		return false
	}
	return IsValidCommitType(m[1])
}

// IsValidCommitType checks if the given type is a valid Conventional Commits type.
func IsValidCommitType(commitType string) bool {
	for _, t := range ValidCommitTypes {
		if t == commitType {
			return true
		}
	}
	return false
}

// Check returns warnings about raw. includeBody is whether a body was
// requested from the model.
func Check(raw string, includeBody bool) []string {
	cm := Parse(raw)
	if cm.Subject == "" {
		return []string{"generated message is empty"}
	}

	var warnings []string

	if strings.HasPrefix(cm.Subject, "```") {
		warnings = append(warnings, "message is wrapped in a code fence")
	}
	if n := utf8.RuneCountInString(cm.Subject); n > MaxSubjectLength {
		warnings = append(warnings,
			fmt.Sprintf("subject line is %d characters (recommended max %d)", n, MaxSubjectLength))
	}
	if cm.Body != "" && !cm.Separated {
		warnings = append(warnings, "subject and body are not separated by a blank line")
	}
	if cm.Body != "" && !includeBody {
		warnings = append(warnings, "message has a body although none was requested")
	}
	if !cm.IsConventional() {
		warnings = append(warnings, "subject does not follow Conventional Commits (<type>(<scope>): <subject>)")
	}

	return warnings
}
