package orchestrator

// Role identifies the author of a conversation turn.
type Role string

// Valid roles for a ChatTurn.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StructuredAnswer is the triple produced exactly once per assistant turn.
// It is immutable after creation; Answer is never empty (the raw model text
// is used when the output tags are missing).
type StructuredAnswer struct {
	// Reasoning is the model's thought process, or a fixed placeholder when
	// it could not be captured. The value "Error" marks an orchestration
	// failure.
	Reasoning string `json:"reasoning"`

	// Answer is the final reply shown to the user.
	Answer string `json:"answer"`

	// ContextUsed lists the memory snippets injected into the prompt, in
	// retrieval order. Empty when retrieval found nothing.
	ContextUsed []string `json:"context_used"`
}

// ChatTurn is one entry of the append-only conversation owned by a session.
// User turns carry Content; assistant turns carry Answer.
type ChatTurn struct {
	Role    Role
	Content string            // Set for user turns
	Answer  *StructuredAnswer // Set for assistant turns
}

// text resolves the displayable content of a turn: assistant turns render
// only their answer field, never the reasoning.
func (t ChatTurn) text() string {
	if t.Answer != nil {
		return t.Answer.Answer
	}
	return t.Content
}
