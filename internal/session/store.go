package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/nexuscore/nexus/internal/log"
	"github.com/nexuscore/nexus/internal/orchestrator"
)

// ErrSessionNotFound indicates the requested session does not exist.
// Check with errors.Is().
var ErrSessionNotFound = errors.New("session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	pinned     INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id   TEXT NOT NULL,
	role         TEXT NOT NULL,
	content      TEXT NOT NULL,
	reasoning    TEXT NOT NULL DEFAULT '',
	context_used TEXT NOT NULL DEFAULT '[]',
	created_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, id);
`

// Store persists sessions and their turns in a single SQLite file.
type Store struct {
	db     *sql.DB
	logger log.Logger
}

// Open opens (creating if needed) the session database at path.
func Open(path string, logger log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing session schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new session. An empty title defaults to the next free
// "New Chat N".
func (s *Store) Create(ctx context.Context, title string) (*Session, error) {
	if title == "" {
		existing, err := s.titles(ctx)
		if err != nil {
			return nil, err
		}
		title = NextTitle(existing)
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, title, pinned, created_at, updated_at) VALUES (?, ?, 0, ?, ?)`,
		sess.ID.String(), sess.Title, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Debug("session created", "id", sess.ID, "title", sess.Title)
	return sess, nil
}

// Get returns a session by id, or ErrSessionNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.title, s.pinned, s.created_at, s.updated_at,
		       (SELECT COUNT(*) FROM turns t WHERE t.session_id = s.id)
		FROM sessions s WHERE s.id = ?`, id.String())

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// List returns all sessions, pinned first, then most recently updated.
func (s *Store) List(ctx context.Context) ([]*Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.title, s.pinned, s.created_at, s.updated_at,
		       (SELECT COUNT(*) FROM turns t WHERE t.session_id = s.id)
		FROM sessions s
		ORDER BY s.pinned DESC, s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// Rename updates a session's title.
func (s *Store) Rename(ctx context.Context, id uuid.UUID, title string) error {
	return s.updateSession(ctx, id,
		`UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UTC(), id.String())
}

// TogglePin flips a session's pinned flag.
func (s *Store) TogglePin(ctx context.Context, id uuid.UUID) error {
	return s.updateSession(ctx, id,
		`UPDATE sessions SET pinned = 1 - pinned, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id.String())
}

// Delete removes a session and all its turns.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, id.String()); err != nil {
		return fmt.Errorf("deleting session turns: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	s.logger.Debug("session deleted", "id", id)
	return nil
}

// AppendTurn appends one conversation turn and bumps the session's
// updated_at; both commit in one transaction. Assistant turns persist
// answer, reasoning and the context snippets used; user turns persist only
// content.
func (s *Store) AppendTurn(ctx context.Context, sessionID uuid.UUID, turn orchestrator.ChatTurn) error {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return err
	}

	content := turn.Content
	reasoning := ""
	contextJSON := "[]"
	if turn.Answer != nil {
		content = turn.Answer.Answer
		reasoning = turn.Answer.Reasoning
		data, err := json.Marshal(turn.Answer.ContextUsed)
		if err != nil {
			return fmt.Errorf("encoding context_used: %w", err)
		}
		contextJSON = string(data)
	}

	now := time.Now().UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO turns (session_id, role, content, reasoning, context_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID.String(), string(turn.Role), content, reasoning, contextJSON, now)
	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE id = ?`, now, sessionID.String())
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

// Turns loads a session's conversation in insertion order.
func (s *Store) Turns(ctx context.Context, sessionID uuid.UUID) ([]orchestrator.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content, reasoning, context_used
		FROM turns WHERE session_id = ? ORDER BY id`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("loading turns: %w", err)
	}
	defer rows.Close()

	var turns []orchestrator.ChatTurn
	for rows.Next() {
		var role, content, reasoning, contextJSON string
		if err := rows.Scan(&role, &content, &reasoning, &contextJSON); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}

		turn := orchestrator.ChatTurn{Role: orchestrator.Role(role)}
		if turn.Role == orchestrator.RoleAssistant {
			var used []string
			if err := json.Unmarshal([]byte(contextJSON), &used); err != nil {
				s.logger.Warn("unreadable context_used, dropping", "session", sessionID, "error", err)
				used = nil
			}
			turn.Answer = &orchestrator.StructuredAnswer{
				Reasoning:   reasoning,
				Answer:      content,
				ContextUsed: used,
			}
		} else {
			turn.Content = content
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading turns: %w", err)
	}
	return turns, nil
}

// updateSession runs an UPDATE that must affect exactly one session.
func (s *Store) updateSession(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// titles returns all existing session titles.
func (s *Store) titles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("listing titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// scanner abstracts *sql.Row and *sql.Rows for scanSession.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		idStr  string
		sess   Session
		pinned int
	)
	if err := row.Scan(&idStr, &sess.Title, &pinned, &sess.CreatedAt, &sess.UpdatedAt, &sess.TurnCount); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", idStr, err)
	}
	sess.ID = id
	sess.Pinned = pinned != 0
	return &sess, nil
}
