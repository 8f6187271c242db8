// Package app provides application initialization and dependency wiring.
//
// App is the container behind every CLI entry point: it owns the Gemini
// client, the persistent memory store, the ingestor, the session store and
// the orchestrator, and knows how to release them in order.
package app

import (
	"context"
	"fmt"

	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/llm"
	"github.com/nexuscore/nexus/internal/log"
	"github.com/nexuscore/nexus/internal/memory"
	"github.com/nexuscore/nexus/internal/orchestrator"
	"github.com/nexuscore/nexus/internal/session"
)

// App is the core application container.
type App struct {
	Config       *config.Config
	Logger       log.Logger
	LLM          *llm.Client
	Memory       *memory.Store
	Ingestor     *memory.Ingestor
	Sessions     *session.Store
	Orchestrator *orchestrator.Orchestrator
}

// Setup creates and wires all components. On failure everything already
// initialized is released before returning.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}

	a := &App{Config: cfg, Logger: logger}
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	client, err := llm.New(ctx, cfg.APIKey, cfg.ModelName, cfg.EmbedderModel,
		logger.With("component", "llm"))
	if err != nil {
		return nil, fmt.Errorf("initializing model client: %w", err)
	}
	a.LLM = client

	store, err := memory.NewStore(cfg.StorageDir, cfg.Collection,
		memory.NewEmbeddingFunc(client), logger.With("component", "memory"))
	if err != nil {
		return nil, fmt.Errorf("initializing memory store: %w", err)
	}
	a.Memory = store

	a.Ingestor = memory.NewIngestor(store, cfg.ChunkSize, cfg.ChunkOverlap,
		logger.With("component", "ingest"))

	sessions, err := session.Open(cfg.SessionDBPath(), logger.With("component", "session"))
	if err != nil {
		return nil, fmt.Errorf("initializing session store: %w", err)
	}
	a.Sessions = sessions

	orch, err := orchestrator.New(orchestrator.Config{
		Retriever:       store,
		Generator:       client,
		Logger:          logger.With("component", "orchestrator"),
		TopK:            cfg.TopK,
		MaxHistoryTurns: cfg.MaxHistoryTurns,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing orchestrator: %w", err)
	}
	a.Orchestrator = orch

	return a, nil
}

// Close releases all resources in reverse initialization order.
func (a *App) Close() error {
	var firstErr error

	if a.Sessions != nil {
		if err := a.Sessions.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing session store: %w", err)
		}
	}
	if a.LLM != nil {
		if err := a.LLM.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing model client: %w", err)
		}
	}
	return firstErr
}
