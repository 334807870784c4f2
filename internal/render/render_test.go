package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbnj-labs/pbnj/internal/analysis"
	"github.com/pbnj-labs/pbnj/internal/model"
)

func testModel() *model.Model {
	return &model.Model{
		SourceName:  "sales.pbix",
		Fingerprint: "sha256:abc/100",
		Tables: []model.Table{
			{Name: "Sales", Columns: []model.Column{
				{Name: "Amount", DataType: "decimal"},
				{Name: "DateKey", DataType: "int64"},
			}},
			{Name: "Date", Hidden: true, Columns: []model.Column{
				{Name: "DateKey", DataType: "int64"},
			}},
			{Name: "Product", Columns: []model.Column{
				{Name: "ProductKey", DataType: model.TypeUnknown},
			}},
		},
		Measures: []model.Measure{
			{Name: "Total Sales", Table: "Sales", Expression: "SUM(Sales[Amount])", FormatString: "#,0"},
			{Name: "Filtered", Table: "Sales", Expression: "CALCULATE(SUM(Sales[Amount]), FILTER(ALL(Sales), TRUE()))"},
		},
		Relationships: []model.Relationship{
			{FromTable: "Sales", FromColumn: "DateKey", ToTable: "Date", ToColumn: "DateKey",
				Cardinality: model.OneToMany, CrossFilter: model.FilterSingle, Active: true},
			{FromTable: "Sales", FromColumn: "ProductKey", ToTable: "Product", ToColumn: "ProductKey",
				Cardinality: model.OneToMany, CrossFilter: model.FilterSingle, Active: true},
		},
		Queries: []model.TransformationQuery{
			{Name: "Sales", Table: "Sales", Source: `let Source = Sql.Database("srv", "db") in Source`,
				Steps: []model.QueryStep{{Name: "Source", Expression: `Sql.Database("srv", "db")`}}},
		},
	}
}

func testAnalysis(m *model.Model) *analysis.Analysis {
	return analysis.Analyze(m, analysis.DefaultConfig())
}

func TestRenderAllTypes(t *testing.T) {
	m := testModel()
	a := testAnalysis(m)
	r := New()

	for _, dt := range DocTypes() {
		t.Run(string(dt), func(t *testing.T) {
			doc, err := r.Render(dt, m, a)
			require.NoError(t, err)
			assert.Equal(t, dt, doc.Type)
			assert.NotEmpty(t, doc.Content)
			assert.Equal(t, m.Fingerprint, doc.Fingerprint)
			assert.False(t, doc.FallbackUsed)
		})
	}
}

func TestRenderIdempotent(t *testing.T) {
	m := testModel()
	a := testAnalysis(m)
	r := New()

	for _, dt := range DocTypes() {
		first, err := r.Render(dt, m, a)
		require.NoError(t, err)
		second, err := r.Render(dt, m, a)
		require.NoError(t, err)
		assert.Equal(t, first.Content, second.Content, "type %s", dt)
	}
}

func TestRenderTablesContent(t *testing.T) {
	m := testModel()
	doc, err := New().Render(DocTables, m, testAnalysis(m))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "## Sales")
	assert.Contains(t, doc.Content, "## Date (hidden)")
	assert.Contains(t, doc.Content, "Role: fact")
	assert.Contains(t, doc.Content, "| Amount | decimal |")
	assert.Contains(t, doc.Content, "unknown")
}

func TestRenderMeasuresContent(t *testing.T) {
	m := testModel()
	doc, err := New().Render(DocMeasures, m, testAnalysis(m))
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "## Total Sales")
	assert.Contains(t, doc.Content, "Complexity: simple")
	assert.Contains(t, doc.Content, "Complexity: complex")
	assert.Contains(t, doc.Content, "SUM(Sales[Amount])")
}

func TestRenderEmptyModel(t *testing.T) {
	m := &model.Model{SourceName: "empty.pbix", Fingerprint: "sha256:e/0"}
	a := testAnalysis(m)
	r := New()

	tests := []struct {
		dt   DocType
		want string
	}{
		{DocTables, "No tables found"},
		{DocMeasures, "No measures found"},
		{DocRelationships, "No relationships found"},
		{DocTransformations, "No transformation queries found"},
		{DocBusinessSummary, "No data found"},
	}
	for _, tt := range tests {
		doc, err := r.Render(tt.dt, m, a)
		require.NoError(t, err)
		assert.Contains(t, doc.Content, tt.want, "type %s", tt.dt)
	}
}

func TestRenderCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	custom := "CUSTOM {{.Model.SourceName}} has {{len .Model.Tables}} tables"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.md.tmpl"), []byte(custom), 0o644))

	m := testModel()
	r := NewWithTemplateDir(dir)

	doc, err := r.Render(DocTables, m, testAnalysis(m))
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM sales.pbix has 3 tables", doc.Content)
	assert.False(t, doc.FallbackUsed)
}

func TestRenderCustomTemplateFallback(t *testing.T) {
	dir := t.TempDir()
	// Broken template for tables only.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.md.tmpl"), []byte("{{.Broken"), 0o644))

	m := testModel()
	a := testAnalysis(m)
	r := NewWithTemplateDir(dir)

	doc, err := r.Render(DocTables, m, a)
	require.NoError(t, err)
	assert.True(t, doc.FallbackUsed)
	assert.Contains(t, doc.Content, "# Tables")

	// Other types are unaffected and use their defaults without fallback.
	other, err := r.Render(DocMeasures, m, a)
	require.NoError(t, err)
	assert.False(t, other.FallbackUsed)
}

func TestRenderCustomTemplateExecuteErrorFallsBack(t *testing.T) {
	dir := t.TempDir()
	// Parses fine, fails at execute time.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.md.tmpl"), []byte("{{index .Model.Tables 99}}"), 0o644))

	m := testModel()
	a := testAnalysis(m)
	r := NewWithTemplateDir(dir)

	doc, err := r.Render(DocTables, m, a)
	require.NoError(t, err)
	assert.True(t, doc.FallbackUsed)
	assert.Contains(t, doc.Content, "# Tables")
}

func TestRenderAllExecuteErrorDoesNotBlockOthers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tables.md.tmpl"), []byte("{{index .Model.Tables 99}}"), 0o644))

	m := testModel()
	set, err := NewWithTemplateDir(dir).RenderAll(context.Background(), m, testAnalysis(m))
	require.NoError(t, err)
	require.Len(t, set.Documents, len(DocTypes()))

	for _, doc := range set.Documents {
		if doc.Type == DocTables {
			assert.True(t, doc.FallbackUsed)
			assert.Contains(t, doc.Content, "# Tables")
			continue
		}
		assert.True(t, doc.FallbackUsed, "type %s has no custom template", doc.Type)
		assert.NotEmpty(t, doc.Content, "type %s", doc.Type)
	}
}

func TestRenderMissingCustomDirFallsBack(t *testing.T) {
	m := testModel()
	r := NewWithTemplateDir(filepath.Join(t.TempDir(), "absent"))

	doc, err := r.Render(DocTables, m, testAnalysis(m))
	require.NoError(t, err)
	assert.True(t, doc.FallbackUsed)
	assert.Contains(t, doc.Content, "# Tables")
}

func TestRenderAll(t *testing.T) {
	m := testModel()
	set, err := New().RenderAll(context.Background(), m, testAnalysis(m))
	require.NoError(t, err)

	require.Len(t, set.Documents, len(DocTypes()))
	for i, dt := range DocTypes() {
		assert.Equal(t, dt, set.Documents[i].Type)
	}

	require.NotNil(t, set.Get(DocBusinessSummary))
	assert.Nil(t, set.Get(DocType("nope")))
}

func TestWriteDir(t *testing.T) {
	m := testModel()
	set, err := New().RenderAll(context.Background(), m, testAnalysis(m))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, set.WriteDir(dir))

	for _, dt := range DocTypes() {
		data, err := os.ReadFile(filepath.Join(dir, string(dt)+".md"))
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

func TestParseDocType(t *testing.T) {
	dt, err := ParseDocType("measures")
	require.NoError(t, err)
	assert.Equal(t, DocMeasures, dt)

	_, err = ParseDocType("bogus")
	assert.Error(t, err)
}

func TestComplexityTier(t *testing.T) {
	assert.Equal(t, "Low", complexityTier(0))
	assert.Equal(t, "Low", complexityTier(20))
	assert.Equal(t, "Moderate", complexityTier(21))
	assert.Equal(t, "Moderate", complexityTier(50))
	assert.Equal(t, "High", complexityTier(51))
}
