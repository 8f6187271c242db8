package orchestrator

import (
	"fmt"
	"strings"
)

// Placeholder strings injected into the prompt. The two conversation
// placeholders are deliberately distinct: "No prior conversation." means the
// history itself was empty, "No recent conversation." means every recent
// turn resolved to empty content.
const (
	noMemoryPlaceholder  = "No relevant memory found."
	noRecentConversation = "No recent conversation."
	noPriorConversation  = "No prior conversation."
)

// promptTemplate is the fixed prompt contract: persona, retrieved memory,
// recent conversation, the verbatim query, then the instructions that force
// the <THOUGHT>/<ANSWER> output shape the parser relies on.
const promptTemplate = `You are Nexus, a dedicated Personal Knowledge Assistant.

### Context from Memory:
%s

### Previous Conversation:
%s

### User Query:
%s

### Instructions:
1. **Context**: You are in an ongoing conversation. Do NOT introduce yourself ("Hi, I'm Nexus") unless explicitly asked who you are.
2. **Title**: If the user asks for a title or summary, provide a very short one.
3. **Think**: Analyze the request, memory, and history. Plan your answer.
4. **Answer**: Provide a clear, concise, and helpful response. Use a professional yet friendly tone.

Format your output EXACTLY as follows using special delimiters:

<THOUGHT>
(Your thought process, planning, and analysis here)
</THOUGHT>

<ANSWER>
(Your final answer to the user here)
</ANSWER>`

// buildPrompt assembles the full prompt from the already-formatted context
// and history blocks plus the verbatim user query.
func buildPrompt(userQuery, contextStr, historyStr string) string {
	return fmt.Sprintf(promptTemplate, contextStr, historyStr, userQuery)
}

// formatContext joins retrieved snippets for the memory section, falling
// back to the placeholder when retrieval found nothing.
func formatContext(docs []string) string {
	if len(docs) == 0 {
		return noMemoryPlaceholder
	}
	return strings.Join(docs, "\n")
}

// formatHistory renders at most the last maxTurns turns as "Role: content"
// lines. Assistant turns contribute only their answer field; turns whose
// resolved content is empty are skipped.
func formatHistory(history []ChatTurn, maxTurns int) string {
	if len(history) == 0 {
		return noPriorConversation
	}

	recent := history
	if maxTurns > 0 && len(recent) > maxTurns {
		recent = recent[len(recent)-maxTurns:]
	}

	var sb strings.Builder
	for _, turn := range recent {
		content := turn.text()
		if content == "" {
			continue
		}
		role := "Nexus"
		if turn.Role == RoleUser {
			role = "User"
		}
		sb.WriteString(role)
		sb.WriteString(": ")
		sb.WriteString(content)
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return noRecentConversation
	}
	return sb.String()
}
