package state

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/pbnj-labs/pbnj/internal/model"
	"github.com/pbnj-labs/pbnj/internal/render"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// The driver serializes writes; a single connection avoids SQLITE_BUSY
	// and keeps :memory: databases on one shared handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema initializes the database schema.
func (s *SQLiteStore) InitSchema() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// SaveSnapshot stores the model for a project, replacing any previous
// snapshot. Each save gets a fresh build ID.
func (s *SQLiteStore) SaveSnapshot(project string, m *model.Model) (*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	modelJSON, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal model: %w", err)
	}

	snap := &Snapshot{
		Project:     project,
		BuildID:     uuid.New().String(),
		Fingerprint: m.Fingerprint,
		Model:       m,
		LastBuiltAt: time.Now().UTC(),
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO snapshots (project, build_id, fingerprint, model_json, last_built_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.Project, snap.BuildID, snap.Fingerprint, string(modelJSON), snap.LastBuiltAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return snap, nil
}

// LoadSnapshot retrieves the stored snapshot for a project.
func (s *SQLiteStore) LoadSnapshot(project string) (*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	snap := &Snapshot{Project: project}
	var modelJSON string

	err := s.db.QueryRow(
		`SELECT build_id, fingerprint, model_json, last_built_at FROM snapshots WHERE project = ?`,
		project,
	).Scan(&snap.BuildID, &snap.Fingerprint, &modelJSON, &snap.LastBuiltAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot for project %s: %w", project, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var m model.Model
	if err := json.Unmarshal([]byte(modelJSON), &m); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}
	snap.Model = &m

	return snap, nil
}

// ShouldRegenerate reports whether documentation must be rebuilt: true when
// the project has no snapshot or its stored fingerprint differs.
func (s *SQLiteStore) ShouldRegenerate(project, fingerprint string) (bool, error) {
	if s.db == nil {
		return false, fmt.Errorf("database not opened")
	}

	var stored string
	err := s.db.QueryRow(
		`SELECT fingerprint FROM snapshots WHERE project = ?`, project,
	).Scan(&stored)

	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot fingerprint: %w", err)
	}

	return stored != fingerprint, nil
}

// SaveDocuments stores rendered documents for a project in one transaction,
// replacing any previous document of the same type.
func (s *SQLiteStore) SaveDocuments(project string, docs []render.Document) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO documents (project, doc_type, fingerprint, fallback_used, content)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, doc := range docs {
		if _, err := stmt.Exec(project, string(doc.Type), doc.Fingerprint, doc.FallbackUsed, doc.Content); err != nil {
			return fmt.Errorf("insert document %s: %w", doc.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves one stored document by type.
func (s *SQLiteStore) GetDocument(project string, dt render.DocType) (*render.Document, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	doc := render.Document{Type: dt}
	err := s.db.QueryRow(
		`SELECT fingerprint, fallback_used, content FROM documents WHERE project = ? AND doc_type = ?`,
		project, string(dt),
	).Scan(&doc.Fingerprint, &doc.FallbackUsed, &doc.Content)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s for project %s: %w", dt, project, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// ListDocuments retrieves all stored documents for a project in doc_type order.
func (s *SQLiteStore) ListDocuments(project string) ([]render.Document, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		`SELECT doc_type, fingerprint, fallback_used, content FROM documents
		 WHERE project = ? ORDER BY doc_type`,
		project,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []render.Document
	for rows.Next() {
		var doc render.Document
		var dt string
		if err := rows.Scan(&dt, &doc.Fingerprint, &doc.FallbackUsed, &doc.Content); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Type = render.DocType(dt)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return docs, nil
}
