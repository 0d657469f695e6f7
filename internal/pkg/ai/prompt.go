package ai

import (
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultSystemPrompt is the default system prompt for generating commit messages.
const DefaultSystemPrompt = `You are an expert at writing git commit messages.

Format Requirements:
- First line: a concise summary in imperative mood, no trailing period, max 72 characters
- Conventional Commits style is preferred: <type>(<scope>): <subject>
- When a body is requested, separate it from the subject with one blank line
  and explain what changed and why, not how

Output only the commit message, no explanations and no code fences.`

const (
	diffLabel = "Here is the diff of the changes to describe:"
	hintLabel = "Additional context from the user. It takes priority over anything inferred from the diff:"

	bodyRequested = "Write a subject line, then a blank line, then a body of a few short lines explaining what changed and why."
	bodyForbidden = "Write only a single subject line. Do not include a body or any additional lines."
)

// Conversation is the ordered list of turns sent to the model.
type Conversation []openai.ChatCompletionMessage

// PromptOptions are the per-invocation inputs to AssemblePrompt.
type PromptOptions struct {
	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string
	Diff         string
	// Hint is optional free-text guidance from the user.
	Hint        string
	IncludeBody bool
}

// AssemblePrompt builds the conversation for one generation: the system
// directive, the diff, the optional hint, and the body directive, always in
// that order. The body directive is always last.
func AssemblePrompt(opts PromptOptions) Conversation {
	system := opts.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}

	conv := Conversation{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: diffLabel + "\n\n```diff\n" + opts.Diff + "\n```"},
	}

	if hint := strings.TrimSpace(opts.Hint); hint != "" {
		conv = append(conv, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: hintLabel + "\n" + hint,
		})
	}

	directive := bodyForbidden
	if opts.IncludeBody {
		directive = bodyRequested
	}
	conv = append(conv, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: directive,
	})

	return conv
}

// String renders the conversation for --debug inspection.
func (c Conversation) String() string {
	var sb strings.Builder
	for i, turn := range c {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("[")
		sb.WriteString(turn.Role)
		sb.WriteString("]\n")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

// ContentLength returns the total number of content bytes across all turns.
func (c Conversation) ContentLength() int {
	n := 0
	for _, turn := range c {
		n += len(turn.Content)
	}
	return n
}
