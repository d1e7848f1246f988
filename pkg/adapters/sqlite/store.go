// Package sqlite persists forms, sessions and responses in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/formflow/pkg/domain"
)

// Store implements ports.FormStore, ports.StateStore and ports.ResponseStore.
//
// Graphs, states and answer sets are stored as JSON documents; only the
// columns needed for lookups and ordering are broken out.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path (":memory:" for a throwaway store)
// and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time; a single connection also keeps
	// ":memory:" databases alive between queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			graph TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			form_id TEXT NOT NULL,
			state TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS responses (
			id TEXT PRIMARY KEY,
			form_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			answers TEXT NOT NULL,
			completed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS responses_form ON responses (form_id, completed_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// stampLayout is fixed-width so timestamps sort correctly as text.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func stamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

func parseStamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// GetForm loads a form graph.
func (s *Store) GetForm(ctx context.Context, id string) (*domain.Form, error) {
	var graph, created, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT graph, created_at, updated_at FROM forms WHERE id = ?`, id,
	).Scan(&graph, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFormNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query form %s: %w", id, err)
	}

	var form domain.Form
	if err := json.Unmarshal([]byte(graph), &form); err != nil {
		return nil, fmt.Errorf("failed to decode form %s: %w", id, err)
	}
	if form.CreatedAt, err = parseStamp(created); err != nil {
		return nil, fmt.Errorf("form %s: bad created_at: %w", id, err)
	}
	if form.UpdatedAt, err = parseStamp(updated); err != nil {
		return nil, fmt.Errorf("form %s: bad updated_at: %w", id, err)
	}
	return &form, nil
}

// ListForms returns every form ID, sorted.
func (s *Store) ListForms(ctx context.Context) ([]string, error) {
	return s.ids(ctx, `SELECT id FROM forms ORDER BY id`)
}

// SaveForm upserts a form, preserving its original creation time.
func (s *Store) SaveForm(ctx context.Context, form *domain.Form) error {
	if form.ID == "" {
		return fmt.Errorf("form missing ID")
	}
	graph, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("failed to encode form %s: %w", form.ID, err)
	}
	now := time.Now()
	created := form.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forms (id, name, graph, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, graph = excluded.graph, updated_at = excluded.updated_at`,
		form.ID, form.Name, string(graph), stamp(created), stamp(now),
	)
	if err != nil {
		return fmt.Errorf("failed to save form %s: %w", form.ID, err)
	}
	return nil
}

// DeleteForm removes a form. Its responses are kept.
func (s *Store) DeleteForm(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete form %s: %w", id, err)
	}
	return nil
}

// Save persists a session state.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, form_id, state, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET form_id = excluded.form_id, state = excluded.state, updated_at = excluded.updated_at`,
		sessionID, state.FormID, string(data), stamp(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return nil
}

// Load reads a session state.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM sessions WHERE id = ?`, sessionID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", sessionID, err)
	}

	var state domain.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state %s: %w", sessionID, err)
	}
	if state.Answers == nil {
		state.Answers = make(domain.Answers)
	}
	return &state, nil
}

// Delete removes a session state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// List returns every stored session ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.ids(ctx, `SELECT id FROM sessions ORDER BY id`)
}

// SaveResponse records a completed session.
func (s *Store) SaveResponse(ctx context.Context, resp domain.Response) error {
	answers, err := json.Marshal(resp.Answers.Serializable())
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO responses (id, form_id, session_id, answers, completed_at) VALUES (?, ?, ?, ?, ?)`,
		resp.ID, resp.FormID, resp.SessionID, string(answers), stamp(resp.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save response %s: %w", resp.ID, err)
	}
	return nil
}

// ListResponses returns a form's responses, oldest first.
func (s *Store) ListResponses(ctx context.Context, formID string) ([]domain.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, answers, completed_at FROM responses
		WHERE form_id = ? ORDER BY completed_at, id`, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	var out []domain.Response
	for rows.Next() {
		resp := domain.Response{FormID: formID}
		var answers, completed string
		if err := rows.Scan(&resp.ID, &resp.SessionID, &answers, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &resp.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode response %s: %w", resp.ID, err)
		}
		if resp.CompletedAt, err = parseStamp(completed); err != nil {
			return nil, fmt.Errorf("response %s: bad completed_at: %w", resp.ID, err)
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func (s *Store) ids(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
