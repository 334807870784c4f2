// Package engine orchestrates the documentation pipeline: load an extraction,
// normalize it into a model, analyze it, render documents, and persist the
// snapshot. Builds are skipped when the source fingerprint is unchanged.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pbnj-labs/pbnj/internal/analysis"
	"github.com/pbnj-labs/pbnj/internal/extract"
	"github.com/pbnj-labs/pbnj/internal/model"
	"github.com/pbnj-labs/pbnj/internal/render"
	"github.com/pbnj-labs/pbnj/internal/state"
)

// Config holds engine configuration.
type Config struct {
	// Project names the documentation project; snapshots are keyed by it.
	Project string
	// InputPath is the path to the extraction JSON file.
	InputPath string
	// OutputDir is where rendered markdown is written (empty to skip).
	OutputDir string
	// TemplateDir optionally overrides the built-in templates.
	TemplateDir string
	// StatePath is the path to the SQLite state database.
	StatePath string
	// Analysis holds the classification thresholds and rule overrides.
	Analysis analysis.Config
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine runs documentation builds for one project.
type Engine struct {
	cfg      Config
	logger   *slog.Logger
	store    *state.SQLiteStore
	renderer *render.Renderer
}

// BuildResult reports one build pass. When Skipped is set the model,
// analysis, and documents come from the stored snapshot.
type BuildResult struct {
	Project     string              `json:"project"`
	Fingerprint string              `json:"fingerprint"`
	Skipped     bool                `json:"skipped"`
	Model       *model.Model        `json:"-"`
	Analysis    *analysis.Analysis  `json:"-"`
	Failures    []model.Failure     `json:"failures,omitempty"`
	Documents   *render.DocumentSet `json:"-"`
}

// New creates an engine and opens its state store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "project", cfg.Project, "state", cfg.StatePath)

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	renderer := render.New()
	if cfg.TemplateDir != "" {
		renderer = render.NewWithTemplateDir(cfg.TemplateDir)
	}

	return &Engine{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		renderer: renderer,
	}, nil
}

// Close releases the engine's state store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store exposes the underlying state store for read-side consumers.
func (e *Engine) Store() state.Store {
	return e.store
}

// Build runs one documentation pass. Unless force is set, an unchanged source
// fingerprint short-circuits into the stored snapshot and documents.
func (e *Engine) Build(ctx context.Context, force bool) (*BuildResult, error) {
	raw, err := extract.LoadFile(e.cfg.InputPath)
	if err != nil {
		return nil, err
	}
	fingerprint := raw.Fingerprint()

	if !force {
		regen, err := e.store.ShouldRegenerate(e.cfg.Project, fingerprint)
		if err != nil {
			return nil, err
		}
		if !regen {
			e.logger.Info("source unchanged, skipping build",
				"project", e.cfg.Project, "fingerprint", fingerprint)
			return e.storedResult(fingerprint)
		}
	}

	m, failures, err := model.Normalize(raw)
	if err != nil {
		return nil, err
	}
	for _, f := range failures {
		e.logger.Warn("normalization issue", "section", f.Section, "reason", f.Reason)
	}

	a := analysis.Analyze(m, e.cfg.Analysis)

	docs, err := e.renderer.RenderAll(ctx, m, a)
	if err != nil {
		return nil, err
	}

	if _, err := e.store.SaveSnapshot(e.cfg.Project, m); err != nil {
		return nil, err
	}
	if err := e.store.SaveDocuments(e.cfg.Project, docs.Documents); err != nil {
		return nil, err
	}

	if e.cfg.OutputDir != "" {
		if err := docs.WriteDir(e.cfg.OutputDir); err != nil {
			return nil, err
		}
	}

	e.logger.Info("build complete",
		"project", e.cfg.Project,
		"fingerprint", fingerprint,
		"tables", len(m.Tables),
		"measures", len(m.Measures),
		"findings", len(a.Findings))

	return &BuildResult{
		Project:     e.cfg.Project,
		Fingerprint: fingerprint,
		Model:       m,
		Analysis:    a,
		Failures:    failures,
		Documents:   docs,
	}, nil
}

// Current loads the stored snapshot and recomputes its analysis. Analysis is
// pure over the model, so it is derived on demand rather than persisted.
func (e *Engine) Current() (*model.Model, *analysis.Analysis, error) {
	snap, err := e.store.LoadSnapshot(e.cfg.Project)
	if err != nil {
		return nil, nil, err
	}
	return snap.Model, analysis.Analyze(snap.Model, e.cfg.Analysis), nil
}

// Status returns the stored snapshot for the project.
func (e *Engine) Status() (*state.Snapshot, error) {
	return e.store.LoadSnapshot(e.cfg.Project)
}

func (e *Engine) storedResult(fingerprint string) (*BuildResult, error) {
	snap, err := e.store.LoadSnapshot(e.cfg.Project)
	if err != nil {
		return nil, err
	}
	docs, err := e.store.ListDocuments(e.cfg.Project)
	if err != nil {
		return nil, err
	}
	return &BuildResult{
		Project:     e.cfg.Project,
		Fingerprint: fingerprint,
		Skipped:     true,
		Model:       snap.Model,
		Analysis:    analysis.Analyze(snap.Model, e.cfg.Analysis),
		Documents:   &render.DocumentSet{Documents: docs},
	}, nil
}
