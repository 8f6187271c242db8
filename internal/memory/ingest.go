package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/nexuscore/nexus/internal/log"
)

// Sentinel errors for ingestion. Check with errors.Is().
var (
	// ErrUnsupportedFileType indicates a file extension other than .pdf or
	// .txt. Nothing is written.
	ErrUnsupportedFileType = errors.New("unsupported file type: only .pdf and .txt are accepted")

	// ErrEmptyDocument indicates extraction produced no usable text.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrInvalidEncoding indicates a .txt upload that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("text file is not valid UTF-8")
)

// Metadata keys and values written by the ingestor.
const (
	// MetaSource carries the origin of a record: a filename for ingested
	// files, or SourceManual for hand-entered notes.
	MetaSource = "source"

	// MetaChunkID carries the zero-based chunk index within a file,
	// contiguous per ingestion.
	MetaChunkID = "chunk_id"

	// SourceManual marks records created via AddDocument without an
	// explicit source.
	SourceManual = "manual"
)

// DocumentStore is the write-side capability the ingestor needs. *Store
// satisfies it; tests substitute a recording fake.
type DocumentStore interface {
	Insert(ctx context.Context, texts []string, metadatas []map[string]string, ids []string) error
}

// Ingestor converts raw uploads into memory records.
type Ingestor struct {
	store        DocumentStore
	chunkSize    int
	chunkOverlap int
	logger       log.Logger
}

// NewIngestor creates an ingestor writing to store. Non-positive size or an
// overlap that is not strictly smaller than size fall back to the 1000/100
// window.
func NewIngestor(store DocumentStore, chunkSize, chunkOverlap int, logger log.Logger) *Ingestor {
	if chunkSize <= 0 || chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkSize = 1000
		chunkOverlap = 100
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Ingestor{
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// ProcessFile extracts text from an uploaded file, chunks it and writes all
// chunks in one batch. Supported extensions (case-insensitive): .pdf and
// .txt. Every failure leaves the store untouched: extraction happens fully
// before the single Insert call.
func (in *Ingestor) ProcessFile(ctx context.Context, r io.Reader, filename string) error {
	var text string

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filename, err)
		}
		text, err = extractPDFText(data)
		if err != nil {
			return fmt.Errorf("extracting text from %s: %w", filename, err)
		}
	case ".txt":
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("reading %s: %w", filename, err)
		}
		if !utf8.Valid(data) {
			return fmt.Errorf("%w: %s", ErrInvalidEncoding, filename)
		}
		text = string(data)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, filename)
	}

	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}

	chunks := Chunk(text, in.chunkSize, in.chunkOverlap)

	texts := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk
		metadatas[i] = map[string]string{
			MetaSource:  filename,
			MetaChunkID: strconv.Itoa(i),
		}
		ids[i] = uuid.NewString()
	}

	if err := in.store.Insert(ctx, texts, metadatas, ids); err != nil {
		return fmt.Errorf("storing %d chunks of %s: %w", len(chunks), filename, err)
	}

	in.logger.Info("file ingested", "file", filename, "chunks", len(chunks))
	return nil
}

// AddDocument stores a manually entered note as a single record with a
// fresh id. No chunking is applied regardless of length; a nil metadata map
// defaults to {"source": "manual"}.
func (in *Ingestor) AddDocument(ctx context.Context, text string, metadata map[string]string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyDocument
	}
	if metadata == nil {
		metadata = map[string]string{MetaSource: SourceManual}
	}

	id := uuid.NewString()
	if err := in.store.Insert(ctx, []string{text}, []map[string]string{metadata}, []string{id}); err != nil {
		return fmt.Errorf("storing note: %w", err)
	}

	in.logger.Info("note stored", "id", id, "length", len(text))
	return nil
}

// extractPDFText extracts text page by page, concatenated with newline
// separators, mirroring how a per-page reader walks the document.
// The underlying reader panics on some malformed files; the recover turns
// that into a regular extraction error so ingestion stays a local failure.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
