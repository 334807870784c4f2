package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbnj-labs/pbnj/internal/engine"
	"github.com/pbnj-labs/pbnj/internal/render"
)

const extractionDoc = `{
	"file_info": {"name": "sales.pbix", "size_bytes": 1024},
	"tables": [
		{"name": "Sales", "columns": [{"name": "Amount", "data_type": "decimal"}]},
		{"name": "Date", "columns": [{"name": "DateKey", "data_type": "int64"}]}
	],
	"measures": [{"name": "Total Sales", "table": "Sales", "expression": "SUM(Sales[Amount])"}],
	"relationships": [{"from_table": "Sales", "from_column": "DateKey", "to_table": "Date", "to_column": "DateKey"}]
}`

func newTestServer(t *testing.T, build bool) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	inputPath := filepath.Join(dir, "extraction.json")
	require.NoError(t, os.WriteFile(inputPath, []byte(extractionDoc), 0o644))

	eng, err := engine.New(engine.Config{
		Project:   "test",
		InputPath: inputPath,
		StatePath: filepath.Join(dir, "state.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	if build {
		_, err = eng.Build(context.Background(), false)
		require.NoError(t, err)
	}

	srv := httptest.NewServer(NewServer(Config{Engine: eng, InputPath: inputPath}).routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, srv *httptest.Server, path string, v any) int {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, false)

	var body map[string]string
	status := getJSON(t, srv, "/health", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestProject(t *testing.T) {
	srv := newTestServer(t, true)

	var info projectInfo
	status := getJSON(t, srv, "/api/project", &info)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "test", info.Project)
	assert.Equal(t, "sales.pbix", info.SourceName)
	assert.Equal(t, 2, info.Tables)
	assert.Equal(t, 1, info.Measures)
	assert.NotEmpty(t, info.BuildID)
}

func TestProjectNoSnapshot(t *testing.T) {
	srv := newTestServer(t, false)
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/api/project", nil))
}

func TestModelEndpoints(t *testing.T) {
	srv := newTestServer(t, true)

	var tables []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/tables", &tables))
	assert.Len(t, tables, 2)

	var measures []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/measures", &measures))
	assert.Len(t, measures, 1)

	var rels []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/relationships", &rels))
	assert.Len(t, rels, 1)

	var queries []map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/transformations", &queries))
	assert.Empty(t, queries)

	var analysis map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/analysis", &analysis))
	assert.Contains(t, analysis, "table_roles")
}

func TestDocuments(t *testing.T) {
	srv := newTestServer(t, true)

	var infos []documentInfo
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/documents", &infos))
	assert.Len(t, infos, len(render.DocTypes()))

	var doc render.Document
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/documents/tables", &doc))
	assert.Equal(t, render.DocTables, doc.Type)
	assert.Contains(t, doc.Content, "# Tables")

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/api/documents/bogus", nil))
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, true)

	var export map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, srv, "/api/export/json", &export))
	assert.Contains(t, export, "model")
	assert.Contains(t, export, "analysis")

	resp, err := srv.Client().Get(srv.URL + "/api/export/markdown")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")

	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv, "/api/export/xml", nil))
}

func TestRebuild(t *testing.T) {
	srv := newTestServer(t, false)

	// No snapshot yet.
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv, "/api/project", nil))

	resp, err := srv.Client().Post(srv.URL+"/api/rebuild", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "test", res["project"])

	assert.Equal(t, http.StatusOK, getJSON(t, srv, "/api/project", nil))
}
