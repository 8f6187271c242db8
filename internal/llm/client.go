// Package llm wraps the Gemini API behind the small surface the rest of
// Nexus needs: one text completion call and one embedding call.
//
// Generate never returns an error to its caller. Transport and model
// failures degrade to an "Error: ..." string and contentless responses to a
// fixed apology, so downstream parsing always has non-empty input to work
// with.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/nexuscore/nexus/internal/log"
)

// FallbackMessage is returned when the model produces a structurally valid
// but contentless response (no candidates, or no text parts).
const FallbackMessage = "I couldn't generate a response. Please try again."

// ErrMissingAPIKey indicates the client was constructed without a key.
// This is a configuration error: it must surface at startup, not at the
// first generation call.
var ErrMissingAPIKey = errors.New("llm: API key is required")

// Client wraps a Gemini client with a fixed generation model and embedding
// model. It is stateless per call and safe for concurrent use.
type Client struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	embedder *genai.EmbeddingModel
	logger   log.Logger
}

// New creates a Gemini client. An empty API key fails immediately with
// ErrMissingAPIKey.
func New(ctx context.Context, apiKey, modelName, embedderModel string, logger log.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = log.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{
		client:   client,
		model:    client.GenerativeModel(modelName),
		embedder: client.EmbeddingModel(embedderModel),
		logger:   logger,
	}, nil
}

// Generate sends the prompt to the model and returns its text. The result
// is always a non-empty string: failures become an "Error: ..." string and
// contentless responses become FallbackMessage.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("generation failed", "error", err)
		return "Error: " + err.Error()
	}

	text := textFromResponse(resp)
	if text == "" {
		c.logger.Warn("model returned a contentless response")
		return FallbackMessage
	}
	return text
}

// Embed generates a vector embedding for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := c.embedder.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embedding content: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return res.Embedding.Values, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// textFromResponse safely extracts the text of the first candidate,
// concatenating its text parts. Returns "" when the response carries no
// usable text.
func textFromResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}

	var text string
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text
}
