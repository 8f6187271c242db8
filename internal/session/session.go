// Package session provides durable chat-session persistence.
//
// Sessions hold an append-only ordered sequence of conversation turns; the
// store keeps both in SQLite so a restart resumes exactly where the user
// left off. Not thread-safe for a single session: callers serialize writes
// per session, which the synchronous chat loop already guarantees.
package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the title given to a session before the first user
// message produces a generated one.
const DefaultTitle = "New Chat"

// Session represents one conversation.
type Session struct {
	ID        uuid.UUID
	Title     string
	Pinned    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	TurnCount int
}

// NeedsAutoTitle reports whether the session still carries a default title
// and should be renamed from the first user message.
func NeedsAutoTitle(title string) bool {
	return title == DefaultTitle || strings.HasPrefix(title, DefaultTitle+" ")
}

// NextTitle returns the first "New Chat N" title not present in existing.
func NextTitle(existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t] = true
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s %d", DefaultTitle, n)
		if !taken[candidate] {
			return candidate
		}
	}
}
