package memory

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

// Embedder is the minimal embedding capability the store needs. The llm
// package's Gemini client satisfies it; tests substitute a deterministic
// local implementation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewEmbeddingFunc bridges an Embedder to chromem-go's EmbeddingFunc.
//
// Note: chromem-go normalizes vectors itself, so no manual normalization is
// needed here.
func NewEmbeddingFunc(embedder Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed failed: %w", err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("no embedding returned")
		}
		return vec, nil
	}
}
