package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pbnj-labs/pbnj/internal/render"
	"github.com/pbnj-labs/pbnj/internal/state"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, state.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// projectInfo is the summary returned by /api/project.
type projectInfo struct {
	Project       string `json:"project"`
	BuildID       string `json:"build_id"`
	Fingerprint   string `json:"fingerprint"`
	LastBuiltAt   string `json:"last_built_at"`
	SourceName    string `json:"source_name"`
	Tables        int    `json:"tables"`
	Measures      int    `json:"measures"`
	Relationships int    `json:"relationships"`
	Queries       int    `json:"queries"`
}

func (s *Server) handleProject(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.engine.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectInfo{
		Project:       snap.Project,
		BuildID:       snap.BuildID,
		Fingerprint:   snap.Fingerprint,
		LastBuiltAt:   snap.LastBuiltAt.Format("2006-01-02T15:04:05Z07:00"),
		SourceName:    snap.Model.SourceName,
		Tables:        len(snap.Model.Tables),
		Measures:      len(snap.Model.Measures),
		Relationships: len(snap.Model.Relationships),
		Queries:       len(snap.Model.Queries),
	})
}

func (s *Server) handleModel(w http.ResponseWriter, _ *http.Request) {
	m, _, err := s.engine.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, _ *http.Request) {
	_, a, err := s.engine.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleTables(w http.ResponseWriter, _ *http.Request) {
	m, _, err := s.engine.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Tables)
}

func (s *Server) handleMeasures(w http.ResponseWriter, _ *http.Request) {
	m, _, err := s.engine.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Measures)
}

func (s *Server) handleRelationships(w http.ResponseWriter, _ *http.Request) {
	m, _, err := s.engine.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Relationships)
}

func (s *Server) handleTransformations(w http.ResponseWriter, _ *http.Request) {
	m, _, err := s.engine.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Queries)
}

// documentInfo is the listing entry returned by /api/documents; content is
// fetched per document.
type documentInfo struct {
	Type         string `json:"type"`
	Fingerprint  string `json:"fingerprint"`
	FallbackUsed bool   `json:"fallback_used"`
}

func (s *Server) handleDocuments(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.engine.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	docs, err := s.engine.Store().ListDocuments(snap.Project)
	if err != nil {
		writeError(w, err)
		return
	}
	infos := make([]documentInfo, 0, len(docs))
	for _, d := range docs {
		infos = append(infos, documentInfo{
			Type:         string(d.Type),
			Fingerprint:  d.Fingerprint,
			FallbackUsed: d.FallbackUsed,
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	dt, err := render.ParseDocType(chi.URLParam(r, "type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	snap, err := s.engine.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.engine.Store().GetDocument(snap.Project, dt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	switch format {
	case "json":
		m, a, err := s.engine.Current()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"model": m, "analysis": a})

	case "markdown":
		snap, err := s.engine.Status()
		if err != nil {
			writeError(w, err)
			return
		}
		docs, err := s.engine.Store().ListDocuments(snap.Project)
		if err != nil {
			writeError(w, err)
			return
		}
		var sb strings.Builder
		for i, d := range docs {
			if i > 0 {
				sb.WriteString("\n---\n\n")
			}
			sb.WriteString(d.Content)
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(sb.String()))

	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown export format: " + format})
	}
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Build(r.Context(), true)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}
