package orchestrator

import (
	"context"
	"fmt"
	"strings"
)

// maxFallbackTitleLen bounds the truncated-message fallback title.
const maxFallbackTitleLen = 25

// generationErrorPrefix is the recognizable prefix the Generator uses for
// absorbed failures.
const generationErrorPrefix = "Error: "

// Title produces a short session title from the user's first message using
// a lightweight secondary call on the same Generator the pipeline uses.
// Any failure falls back to a truncation of the message itself.
func (o *Orchestrator) Title(ctx context.Context, userMessage string) string {
	fallback := truncateRunes(strings.TrimSpace(userMessage), maxFallbackTitleLen)

	prompt := fmt.Sprintf(
		"Summarize this user query into a very short 3-5 word title. Query: %s. Title:",
		userMessage,
	)
	raw := o.generator.Generate(ctx, prompt)
	if strings.HasPrefix(raw, generationErrorPrefix) {
		o.logger.Warn("title generation failed, using fallback")
		return fallback
	}

	title := strings.TrimSpace(raw)
	title = strings.ReplaceAll(title, `"`, "")
	title = strings.TrimPrefix(title, "Title:")
	title = strings.TrimSpace(title)

	// A multi-line or rambling reply is not a title.
	if title == "" || strings.Contains(title, "\n") {
		return fallback
	}
	return title
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
