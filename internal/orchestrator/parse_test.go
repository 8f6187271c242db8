package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantReasoning string
		wantAnswer    string
	}{
		{
			name:          "well formed",
			raw:           "<THOUGHT>hello</THOUGHT>\n<ANSWER>world</ANSWER>",
			wantReasoning: "hello",
			wantAnswer:    "world",
		},
		{
			name:          "no tags falls back verbatim",
			raw:           "just text",
			wantReasoning: missingThoughtPlaceholder,
			wantAnswer:    "just text",
		},
		{
			name:          "multiline blocks trimmed",
			raw:           "<THOUGHT>\nplan step one\nplan step two\n</THOUGHT>\n\n<ANSWER>\nThe final reply.\n</ANSWER>\n",
			wantReasoning: "plan step one\nplan step two",
			wantAnswer:    "The final reply.",
		},
		{
			name:          "thought tag only falls back",
			raw:           "<THOUGHT>orphaned reasoning</THOUGHT> and then nothing",
			wantReasoning: missingThoughtPlaceholder,
			wantAnswer:    "<THOUGHT>orphaned reasoning</THOUGHT> and then nothing",
		},
		{
			name:          "answer tag only falls back",
			raw:           "<ANSWER>no thought given</ANSWER>",
			wantReasoning: missingThoughtPlaceholder,
			wantAnswer:    "<ANSWER>no thought given</ANSWER>",
		},
		{
			name:          "missing closing answer tag tolerated",
			raw:           "<THOUGHT>thinking</THOUGHT><ANSWER>unterminated reply",
			wantReasoning: "thinking",
			wantAnswer:    "unterminated reply",
		},
		{
			name:          "preamble before thought stays in reasoning",
			raw:           "Sure!<THOUGHT>plan</THOUGHT><ANSWER>done</ANSWER>",
			wantReasoning: "Sure!plan",
			wantAnswer:    "done",
		},
		{
			name:          "empty answer block",
			raw:           "<THOUGHT>all thought no reply</THOUGHT><ANSWER></ANSWER>",
			wantReasoning: "all thought no reply",
			wantAnswer:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reasoning, answer := parseStructured(tt.raw)
			assert.Equal(t, tt.wantReasoning, reasoning)
			assert.Equal(t, tt.wantAnswer, answer)
		})
	}
}
