package memory

import (
	"context"
	"errors"
	"fmt"

	chromem "github.com/philippgille/chromem-go"

	"github.com/nexuscore/nexus/internal/log"
)

// Sentinel errors for store operations. Check with errors.Is().
var (
	// ErrLengthMismatch indicates the texts/metadatas/ids slices passed to
	// Insert do not have equal, non-zero length.
	ErrLengthMismatch = errors.New("texts, metadatas and ids must have equal length >= 1")

	// ErrEmptyText indicates an attempt to insert a record with no content.
	ErrEmptyText = errors.New("record text must not be empty")
)

// Store is a durable, queryable store of text records with metadata, backed
// by a chromem-go persistent collection under a base directory. Records are
// immutable once written; there is no update or per-record delete, only
// Insert, Query, Count and a whole-store Reset.
//
// Store is safe for concurrent readers; writes append independent records
// with caller-generated ids and need no extra coordination.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	embed      chromem.EmbeddingFunc
	logger     log.Logger
}

// NewStore opens (or creates) the persistent collection under dir.
// The directory and collection survive process restarts.
func NewStore(dir, collection string, embed chromem.EmbeddingFunc, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("opening memory store at %q: %w", dir, err)
	}

	col, err := db.GetOrCreateCollection(collection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", collection, err)
	}

	return &Store{
		db:         db,
		collection: col,
		name:       collection,
		embed:      embed,
		logger:     logger,
	}, nil
}

// Insert writes a batch of records. The three slices are parallel and must
// have equal length >= 1; on any validation, embedding or write error nothing
// is persisted and the store count is unchanged. Embeddings for the whole
// batch are computed before the first write, so a mid-batch embedding
// failure cannot leave partial records behind.
func (s *Store) Insert(ctx context.Context, texts []string, metadatas []map[string]string, ids []string) error {
	if len(texts) == 0 || len(texts) != len(metadatas) || len(texts) != len(ids) {
		return fmt.Errorf("%w: got %d texts, %d metadatas, %d ids",
			ErrLengthMismatch, len(texts), len(metadatas), len(ids))
	}

	docs := make([]chromem.Document, 0, len(texts))
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("%w: index %d", ErrEmptyText, i)
		}
		// Defensive copy so callers can reuse their maps.
		meta := make(map[string]string, len(metadatas[i]))
		for k, v := range metadatas[i] {
			meta[k] = v
		}
		docs = append(docs, chromem.Document{
			ID:       ids[i],
			Content:  text,
			Metadata: meta,
		})
	}

	// Embed everything up front. AddDocuments embeds and persists one
	// document at a time, so handing it unembedded docs would persist the
	// records that preceded a failing embedding call.
	for i := range docs {
		vec, err := s.embed(ctx, docs[i].Content)
		if err != nil {
			return fmt.Errorf("embedding record %q: %w", docs[i].ID, err)
		}
		docs[i].Embedding = vec
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("inserting %d records: %w", len(docs), err)
	}

	s.logger.Debug("records inserted", "count", len(docs), "collection", s.name)
	return nil
}

// Query returns the text of the records most similar to the query, ranked
// by cosine similarity. A non-positive limit falls back to 3. The store
// never returns more records than it holds: the limit is clamped to the
// current count, and an empty store short-circuits to an empty result
// without touching the embedding function or the index.
func (s *Store) Query(ctx context.Context, text string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, text, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %q: %w", s.name, err)
	}

	docs := make([]string, 0, len(results))
	for _, r := range results {
		docs = append(docs, r.Content)
	}
	return docs, nil
}

// Count returns the number of records in the store.
func (s *Store) Count() int {
	return s.collection.Count()
}

// Reset drops and recreates the collection. Used for re-initialization;
// not part of the day-to-day contract.
func (s *Store) Reset() error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("deleting collection %q: %w", s.name, err)
	}

	col, err := s.db.GetOrCreateCollection(s.name, nil, s.embed)
	if err != nil {
		return fmt.Errorf("recreating collection %q: %w", s.name, err)
	}
	s.collection = col

	s.logger.Info("memory store reset", "collection", s.name)
	return nil
}
