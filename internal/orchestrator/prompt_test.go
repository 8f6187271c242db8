package orchestrator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHistory_Placeholders(t *testing.T) {
	// Two distinct placeholders for two distinct preconditions.
	assert.Equal(t, noPriorConversation, formatHistory(nil, 20))
	assert.Equal(t, noPriorConversation, formatHistory([]ChatTurn{}, 20))

	allEmpty := []ChatTurn{
		{Role: RoleUser, Content: ""},
		{Role: RoleAssistant, Answer: &StructuredAnswer{Answer: ""}},
	}
	assert.Equal(t, noRecentConversation, formatHistory(allEmpty, 20))
}

func TestFormatHistory_RolesAndContent(t *testing.T) {
	history := []ChatTurn{
		{Role: RoleUser, Content: "what is RAG?"},
		{Role: RoleAssistant, Answer: &StructuredAnswer{
			Reasoning: "internal reasoning must never leak",
			Answer:    "Retrieval-augmented generation.",
		}},
	}

	out := formatHistory(history, 20)
	assert.Equal(t, "User: what is RAG?\nNexus: Retrieval-augmented generation.\n", out)
	assert.NotContains(t, out, "internal reasoning")
}

func TestFormatHistory_SkipsEmptyTurns(t *testing.T) {
	history := []ChatTurn{
		{Role: RoleUser, Content: "first"},
		{Role: RoleUser, Content: ""},
		{Role: RoleAssistant, Answer: &StructuredAnswer{Answer: "reply"}},
	}

	out := formatHistory(history, 20)
	assert.Equal(t, "User: first\nNexus: reply\n", out)
}

func TestFormatHistory_WindowsToLastTurns(t *testing.T) {
	var history []ChatTurn
	for i := 0; i < 30; i++ {
		history = append(history, ChatTurn{Role: RoleUser, Content: fmt.Sprintf("message %d", i)})
	}

	out := formatHistory(history, 20)
	assert.NotContains(t, out, "message 9\n", "older turns must be windowed out")
	assert.Contains(t, out, "message 10")
	assert.Contains(t, out, "message 29")
	assert.Equal(t, 20, strings.Count(out, "\n"))
}

func TestFormatContext(t *testing.T) {
	assert.Equal(t, noMemoryPlaceholder, formatContext(nil))
	assert.Equal(t, "a\nb", formatContext([]string{"a", "b"}))
}

func TestBuildPrompt_SectionsInOrder(t *testing.T) {
	prompt := buildPrompt("when is the deadline?", "snippet one\nsnippet two", "User: hi\n")

	sections := []string{
		"You are Nexus, a dedicated Personal Knowledge Assistant.",
		"### Context from Memory:",
		"snippet one\nsnippet two",
		"### Previous Conversation:",
		"User: hi",
		"### User Query:",
		"when is the deadline?",
		"### Instructions:",
		"<THOUGHT>",
		"<ANSWER>",
	}

	last := -1
	for _, section := range sections {
		idx := strings.Index(prompt, section)
		assert.GreaterOrEqual(t, idx, 0, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
}

func TestBuildPrompt_QueryVerbatim(t *testing.T) {
	query := "  exact   spacing *and* symbols? "
	prompt := buildPrompt(query, noMemoryPlaceholder, noPriorConversation)
	assert.Contains(t, prompt, query)
}
