// Package orchestrator coordinates memory retrieval and model generation
// into the single query-processing pipeline behind every assistant turn:
// retrieve context, format history, compose the structured prompt, generate,
// parse. The pipeline is synchronous and never raises to its caller: every
// failure mode resolves to a well-formed StructuredAnswer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/nexuscore/nexus/internal/log"
)

// Retriever is the read-side capability of the document store the
// orchestrator depends on. Any nearest-neighbor text index satisfies it.
type Retriever interface {
	Query(ctx context.Context, text string, limit int) ([]string, error)
}

// Generator is the opaque text-completion capability. Implementations must
// always return a string, never fail; see the llm package contract.
type Generator interface {
	Generate(ctx context.Context, prompt string) string
}

// Config contains the orchestrator's dependencies and tuning knobs.
type Config struct {
	Retriever Retriever
	Generator Generator
	Logger    log.Logger

	// TopK is the number of memory snippets retrieved per query.
	// Default: 3.
	TopK int

	// MaxHistoryTurns is the number of recent turns included in the
	// prompt. Default: 20.
	MaxHistoryTurns int
}

// Orchestrator runs the retrieval-augmented query pipeline. It is stateless
// across calls and safe for concurrent use as long as its Retriever supports
// concurrent readers.
type Orchestrator struct {
	retriever       Retriever
	generator       Generator
	logger          log.Logger
	topK            int
	maxHistoryTurns int
}

// New creates an Orchestrator, applying defaults for unset knobs.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("generator is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewNop()
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.MaxHistoryTurns <= 0 {
		cfg.MaxHistoryTurns = 20
	}

	return &Orchestrator{
		retriever:       cfg.Retriever,
		generator:       cfg.Generator,
		logger:          cfg.Logger,
		topK:            cfg.TopK,
		maxHistoryTurns: cfg.MaxHistoryTurns,
	}, nil
}

// ProcessQuery runs the full pipeline for one user query and returns the
// structured result. It never panics and never returns an error: any
// failure inside the stages is converted into a StructuredAnswer whose
// Reasoning field is "Error".
func (o *Orchestrator) ProcessQuery(ctx context.Context, userQuery string, history []ChatTurn) (result StructuredAnswer) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("orchestration panic recovered", "panic", r)
			result = StructuredAnswer{
				Reasoning:   "Error",
				Answer:      fmt.Sprintf("An error occurred during orchestration: %v", r),
				ContextUsed: []string{},
			}
		}
	}()

	// 1. Retrieve. A failing store degrades to an empty context rather
	// than failing the turn.
	contextDocs, err := o.retriever.Query(ctx, userQuery, o.topK)
	if err != nil {
		o.logger.Warn("context retrieval failed, continuing without memory", "error", err)
		contextDocs = nil
	}
	hasContext := len(contextDocs) > 0

	// 2-3. Format history and compose the prompt.
	prompt := buildPrompt(userQuery, formatContext(contextDocs), formatHistory(history, o.maxHistoryTurns))

	// 4. Generate.
	raw := o.generator.Generate(ctx, prompt)

	// 5. Parse, tolerating missing delimiters.
	reasoning, answer := parseStructured(raw)

	// 6. Report the context actually injected. Empty wins whenever
	// retrieval found nothing.
	used := []string{}
	if hasContext {
		used = contextDocs
	}

	o.logger.Debug("query processed",
		"context_docs", len(used),
		"history_turns", len(history),
		"answer_length", len(answer))

	return StructuredAnswer{
		Reasoning:   reasoning,
		Answer:      answer,
		ContextUsed: used,
	}
}
