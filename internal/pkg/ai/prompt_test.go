package ai

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+import "fmt"`

func TestAssemblePrompt_WithoutHint(t *testing.T) {
	conv := AssemblePrompt(PromptOptions{Diff: sampleDiff})

	require.Len(t, conv, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, conv[0].Role)
	assert.Equal(t, DefaultSystemPrompt, conv[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, conv[1].Role)
	assert.Contains(t, conv[1].Content, diffLabel)
	assert.Contains(t, conv[1].Content, sampleDiff)
	assert.Equal(t, bodyForbidden, conv[2].Content)
}

func TestAssemblePrompt_WithHintAndBody(t *testing.T) {
	conv := AssemblePrompt(PromptOptions{
		SystemPrompt: "custom system",
		Diff:         sampleDiff,
		Hint:         "  this fixes issue #12  ",
		IncludeBody:  true,
	})

	require.Len(t, conv, 4)
	assert.Equal(t, "custom system", conv[0].Content)
	assert.Contains(t, conv[2].Content, hintLabel)
	assert.True(t, strings.HasSuffix(conv[2].Content, "this fixes issue #12"))
	assert.Equal(t, bodyRequested, conv[3].Content)
}

func TestAssemblePrompt_BlankHintIsDropped(t *testing.T) {
	conv := AssemblePrompt(PromptOptions{Diff: sampleDiff, Hint: " \n\t"})
	assert.Len(t, conv, 3)
}

func TestConversation_String(t *testing.T) {
	conv := AssemblePrompt(PromptOptions{SystemPrompt: "sys", Diff: "d", Hint: "h"})
	out := conv.String()

	assert.True(t, strings.HasPrefix(out, "[system]\nsys\n"))
	assert.Equal(t, 3, strings.Count(out, "[user]"))
	assert.Less(t, strings.Index(out, hintLabel), strings.Index(out, bodyForbidden))
}

func TestConversation_ContentLength(t *testing.T) {
	conv := Conversation{
		{Role: openai.ChatMessageRoleSystem, Content: "abc"},
		{Role: openai.ChatMessageRoleUser, Content: "de"},
	}
	assert.Equal(t, 5, conv.ContentLength())
}

func TestProperty_ConversationOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("system first, diff second, hint third, directive last", prop.ForAll(
		func(system, diff, hint string, includeBody bool) bool {
			conv := AssemblePrompt(PromptOptions{
				SystemPrompt: system,
				Diff:         diff,
				Hint:         hint,
				IncludeBody:  includeBody,
			})

			systemTurns := 0
			for _, turn := range conv {
				if turn.Role == openai.ChatMessageRoleSystem {
					systemTurns++
				}
			}
			if systemTurns != 1 || conv[0].Role != openai.ChatMessageRoleSystem {
				return false
			}
			if !strings.Contains(conv[1].Content, diff) || !strings.HasPrefix(conv[1].Content, diffLabel) {
				return false
			}

			hasHint := strings.TrimSpace(hint) != ""
			wantLen := 3
			if hasHint {
				wantLen = 4
				if !strings.HasPrefix(conv[2].Content, hintLabel) {
					return false
				}
			}
			if len(conv) != wantLen {
				return false
			}

			want := bodyForbidden
			if includeBody {
				want = bodyRequested
			}
			last := conv[len(conv)-1]
			return last.Role == openai.ChatMessageRoleUser && last.Content == want
		},
		gen.AlphaString(),
		gen.AnyString(),
		gen.OneGenOf(gen.Const(""), gen.AlphaString()),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
