package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
	"file_info": {"name": "sales.pbix", "path": "/data/sales.pbix", "size_bytes": 4096},
	"tables": [
		{"name": "Sales", "hidden": false, "columns": [
			{"name": "Amount", "data_type": "decimal"},
			{"name": "DateKey", "data_type": "int64"}
		]},
		{"name": "Date", "columns": [{"name": "DateKey", "data_type": "int64"}]}
	],
	"measures": [
		{"name": "Total Sales", "table": "Sales", "expression": "SUM(Sales[Amount])"}
	],
	"relationships": [
		{"from_table": "Sales", "from_column": "DateKey", "to_table": "Date", "to_column": "DateKey"}
	],
	"power_query": {"queries": [
		{"name": "Sales", "code": "let\n  Source = Sql.Database(\"srv\", \"db\")\nin\n  Source"}
	]}
}`

func TestDecode(t *testing.T) {
	raw, err := Decode([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "sales.pbix", raw.FileInfo.Name)
	assert.Equal(t, int64(4096), raw.FileInfo.SizeBytes)
	assert.Len(t, raw.Tables.Records, 2)
	assert.Len(t, raw.Measures.Records, 1)
	assert.Len(t, raw.Relationships.Records, 1)
	assert.Len(t, raw.Queries.Records, 1)
	assert.False(t, raw.Tables.Failed)
	assert.NotEmpty(t, raw.ContentSHA256)
}

func TestDecodeEmptyInput(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestDecodeMalformedDocument(t *testing.T) {
	_, err := Decode([]byte(`{"tables": [`))
	assert.Error(t, err)
}

func TestDecodeSectionErrorMarker(t *testing.T) {
	doc := `{
		"file_info": {"name": "broken.pbix"},
		"tables": [{"error": "Failed to extract tables: corrupt stream"}],
		"measures": [{"name": "M1", "table": "T", "expression": "SUM(T[C])"}]
	}`

	raw, err := Decode([]byte(doc))
	require.NoError(t, err)

	assert.True(t, raw.Tables.Failed)
	assert.Equal(t, "Failed to extract tables: corrupt stream", raw.Tables.Reason)
	assert.Empty(t, raw.Tables.Records)

	// The failure is isolated: measures decode as usual.
	assert.False(t, raw.Measures.Failed)
	assert.Len(t, raw.Measures.Records, 1)
}

func TestDecodeSectionWrongShape(t *testing.T) {
	doc := `{"file_info": {"name": "x.pbix"}, "relationships": {"oops": true}}`

	raw, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.True(t, raw.Relationships.Failed)
	assert.Contains(t, raw.Relationships.Reason, "relationships")
}

func TestDecodeMissingSections(t *testing.T) {
	raw, err := Decode([]byte(`{"file_info": {"name": "empty.pbix"}}`))
	require.NoError(t, err)

	assert.False(t, raw.Tables.Failed)
	assert.Empty(t, raw.Tables.Records)
	assert.False(t, raw.Queries.Failed)
	assert.Empty(t, raw.Queries.Records)
}

func TestDecodeQueriesList(t *testing.T) {
	doc := `{"power_query": [{"name": "Q1", "code": "let x = 1 in x"}]}`

	raw, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, raw.Queries.Records, 1)
	assert.Equal(t, "Q1", raw.Queries.Records[0].Name)
}

func TestDecodeQueriesErrorObject(t *testing.T) {
	doc := `{"power_query": {"error": "Failed to extract Power Query"}}`

	raw, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.True(t, raw.Queries.Failed)
	assert.Equal(t, "Failed to extract Power Query", raw.Queries.Reason)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	raw, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sales.pbix", raw.FileInfo.Name)
}

func TestLoadFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadFileDefaultsName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"tables": []}`), 0o644))

	raw, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "model.json", raw.FileInfo.Name)
	assert.Equal(t, int64(len(`{"tables": []}`)), raw.FileInfo.SizeBytes)
}

func TestFingerprintStable(t *testing.T) {
	first, err := Decode([]byte(sampleDoc))
	require.NoError(t, err)
	second, err := Decode([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	changed, err := Decode([]byte(`{"file_info": {"name": "other.pbix"}}`))
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint(), changed.Fingerprint())
}
