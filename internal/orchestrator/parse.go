package orchestrator

import "strings"

// Output delimiters the prompt mandates.
const (
	thoughtOpen  = "<THOUGHT>"
	thoughtClose = "</THOUGHT>"
	answerOpen   = "<ANSWER>"
	answerClose  = "</ANSWER>"
)

// missingThoughtPlaceholder is used when the model did not follow the
// delimiter contract.
const missingThoughtPlaceholder = "Thinking process not captured."

// parseStructured splits a raw model response into reasoning and answer.
//
// It is a deliberately small two-state parser: search for the answer tag,
// then done. When both delimiters are present, everything before <ANSWER>
// (markers stripped, whitespace trimmed) is the reasoning and everything
// after (closing marker stripped, trimmed) is the answer. Otherwise the
// pipeline degrades gracefully: a fixed placeholder reasoning and the raw
// text, verbatim, as the answer.
func parseStructured(raw string) (reasoning, answer string) {
	if !strings.Contains(raw, thoughtOpen) || !strings.Contains(raw, answerOpen) {
		return missingThoughtPlaceholder, raw
	}

	before, after, _ := strings.Cut(raw, answerOpen)

	reasoning = strings.ReplaceAll(before, thoughtOpen, "")
	reasoning = strings.ReplaceAll(reasoning, thoughtClose, "")
	reasoning = strings.TrimSpace(reasoning)

	answer = strings.ReplaceAll(after, answerClose, "")
	answer = strings.TrimSpace(answer)

	return reasoning, answer
}
