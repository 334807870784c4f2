// Package state persists build snapshots and rendered documents in SQLite.
// A project holds at most one snapshot: saving a new build replaces the
// previous one, and the stored fingerprint drives regeneration decisions.
package state

import (
	"errors"
	"time"

	"github.com/pbnj-labs/pbnj/internal/model"
	"github.com/pbnj-labs/pbnj/internal/render"
)

// ErrNotFound is returned when a project has no stored snapshot or document.
var ErrNotFound = errors.New("not found")

// Snapshot is the persisted record of one successful build.
type Snapshot struct {
	Project     string       `json:"project"`
	BuildID     string       `json:"build_id"`
	Fingerprint string       `json:"fingerprint"`
	Model       *model.Model `json:"model"`
	LastBuiltAt time.Time    `json:"last_built_at"`
}

// Store is the persistence contract the engine builds against.
type Store interface {
	SaveSnapshot(project string, m *model.Model) (*Snapshot, error)
	LoadSnapshot(project string) (*Snapshot, error)
	ShouldRegenerate(project, fingerprint string) (bool, error)

	SaveDocuments(project string, docs []render.Document) error
	GetDocument(project string, dt render.DocType) (*render.Document, error)
	ListDocuments(project string) ([]render.Document, error)

	Close() error
}
