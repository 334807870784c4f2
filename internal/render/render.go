// Package render turns a normalized model plus its analysis into markdown
// documentation. Rendering is deterministic: the same model, analysis, and
// templates always produce byte-identical output, so documents carry no
// timestamps or other run-varying content.
package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/sync/errgroup"

	"github.com/pbnj-labs/pbnj/internal/analysis"
	"github.com/pbnj-labs/pbnj/internal/model"
)

//go:embed templates/*.md.tmpl
var defaultTemplates embed.FS

// DocType identifies one documentation artifact.
type DocType string

// Documentation artifact types.
const (
	DocTables           DocType = "tables"
	DocMeasures         DocType = "measures"
	DocRelationships    DocType = "relationships"
	DocTransformations  DocType = "transformations"
	DocBusinessSummary  DocType = "business-summary"
	DocTechnicalSummary DocType = "technical-summary"
)

// DocTypes returns all document types in canonical rendering order.
func DocTypes() []DocType {
	return []DocType{
		DocTables, DocMeasures, DocRelationships,
		DocTransformations, DocBusinessSummary, DocTechnicalSummary,
	}
}

// ParseDocType validates a doc type string.
func ParseDocType(s string) (DocType, error) {
	for _, dt := range DocTypes() {
		if string(dt) == s {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

// Document is one rendered artifact. FallbackUsed reports that a custom
// template was configured for this type but could not be used, so the
// built-in default produced the content.
type Document struct {
	Type         DocType `json:"type"`
	Content      string  `json:"content"`
	Fingerprint  string  `json:"fingerprint"`
	FallbackUsed bool    `json:"fallback_used"`
}

// DocumentSet holds one rendered document per type, in canonical order.
type DocumentSet struct {
	Documents []Document `json:"documents"`
}

// Get returns the document of the given type, or nil.
func (s *DocumentSet) Get(dt DocType) *Document {
	for i := range s.Documents {
		if s.Documents[i].Type == dt {
			return &s.Documents[i]
		}
	}
	return nil
}

// Data is the root object every template executes against.
type Data struct {
	Model    *model.Model
	Analysis *analysis.Analysis
}

// Renderer renders documents, optionally preferring templates from a custom
// directory over the embedded defaults.
type Renderer struct {
	templateDir string
}

// New returns a renderer using the embedded default templates.
func New() *Renderer {
	return &Renderer{}
}

// NewWithTemplateDir returns a renderer that prefers <dir>/<type>.md.tmpl
// over the embedded default for each document type. A missing or broken
// custom template falls back to the default for that type only.
func NewWithTemplateDir(dir string) *Renderer {
	return &Renderer{templateDir: dir}
}

var funcs = template.FuncMap{
	"pct": func(f float64) string {
		return fmt.Sprintf("%.0f%%", f*100)
	},
	"inc": func(i int) int {
		return i + 1
	},
	"join": strings.Join,
	"tier": complexityTier,
}

// complexityTier buckets the whole-model complexity score for the business
// summary narrative.
func complexityTier(score int) string {
	switch {
	case score <= 20:
		return "Low"
	case score <= 50:
		return "Moderate"
	default:
		return "High"
	}
}

// Render produces one document. Rendering each type is independent: a custom
// template failure here never affects the other types. A custom template that
// cannot be read, parsed, or executed falls back to the embedded default;
// only a default-template failure is an error.
func (r *Renderer) Render(dt DocType, m *model.Model, a *analysis.Analysis) (Document, error) {
	data := Data{Model: m, Analysis: a}

	fallback := false
	if r.templateDir != "" {
		if content, ok := r.renderCustom(dt, data); ok {
			return Document{
				Type:        dt,
				Content:     content,
				Fingerprint: m.Fingerprint,
			}, nil
		}
		fallback = true
	}

	tmpl, err := defaultTemplate(string(dt) + ".md.tmpl")
	if err != nil {
		return Document{}, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Document{}, fmt.Errorf("render %s: %w", dt, err)
	}

	return Document{
		Type:         dt,
		Content:      buf.String(),
		Fingerprint:  m.Fingerprint,
		FallbackUsed: fallback,
	}, nil
}

// RenderAll renders every document type concurrently and returns them in
// canonical order.
func (r *Renderer) RenderAll(ctx context.Context, m *model.Model, a *analysis.Analysis) (*DocumentSet, error) {
	types := DocTypes()
	docs := make([]Document, len(types))

	g, _ := errgroup.WithContext(ctx)
	for i, dt := range types {
		g.Go(func() error {
			doc, err := r.Render(dt, m, a)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &DocumentSet{Documents: docs}, nil
}

// WriteDir writes every document in the set to <dir>/<type>.md.
func (s *DocumentSet) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, doc := range s.Documents {
		path := filepath.Join(dir, string(doc.Type)+".md")
		if err := os.WriteFile(path, []byte(doc.Content), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// renderCustom tries the custom template for a doc type and reports whether
// it produced content. Execution goes into a scratch buffer so an execute
// failure leaves nothing behind for the caller to use by accident.
func (r *Renderer) renderCustom(dt DocType, data Data) (string, bool) {
	name := string(dt) + ".md.tmpl"

	raw, err := os.ReadFile(filepath.Join(r.templateDir, name)) //nolint:gosec // G304: dir is operator-configured
	if err != nil {
		return "", false
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(raw))
	if err != nil {
		return "", false
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", false
	}
	return buf.String(), true
}

func defaultTemplate(name string) (*template.Template, error) {
	data, err := defaultTemplates.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("default template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse default template %s: %w", name, err)
	}
	return tmpl, nil
}
