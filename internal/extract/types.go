// Package extract defines the boundary between the external .pbix extraction
// tooling and the documentation pipeline. Extraction output arrives as loosely
// typed JSON; every section may be missing, empty, or malformed, so each one is
// carried as a tagged Section result rather than a bare slice. The normalizer
// in internal/model consumes a RawModel and decides what survives.
package extract

// Section is the tagged result for one extraction section.
// A section either holds records (possibly zero) or a failure reason.
type Section[T any] struct {
	Records []T
	Failed  bool
	Reason  string
}

// Ok constructs a successful section result.
func Ok[T any](records []T) Section[T] {
	return Section[T]{Records: records}
}

// Fail constructs a failed section result.
func Fail[T any](reason string) Section[T] {
	return Section[T]{Failed: true, Reason: reason}
}

// FileInfo describes the source file the extraction came from.
type FileInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

// RawColumn is an extracted column record. DataType may be empty when the
// extractor could not determine it; that is expected, not an error.
type RawColumn struct {
	Name        string `json:"name"`
	DataType    string `json:"data_type"`
	Description string `json:"description"`
}

// RawTable is an extracted table record with its columns.
type RawTable struct {
	Name        string      `json:"name"`
	Hidden      bool        `json:"hidden"`
	Description string      `json:"description"`
	Columns     []RawColumn `json:"columns"`
}

// RawMeasure is an extracted DAX measure record.
type RawMeasure struct {
	Name          string `json:"name"`
	Table         string `json:"table"`
	Expression    string `json:"expression"`
	Description   string `json:"description"`
	DisplayFolder string `json:"display_folder"`
	FormatString  string `json:"format_string"`
	DataType      string `json:"data_type"`
}

// RawRelationship is an extracted relationship record. Cardinality and
// CrossFilterDirection use the extractor's vocabulary ("M:1", "both", ...)
// and are normalized downstream.
type RawRelationship struct {
	FromTable            string `json:"from_table"`
	FromColumn           string `json:"from_column"`
	ToTable              string `json:"to_table"`
	ToColumn             string `json:"to_column"`
	Cardinality          string `json:"cardinality"`
	CrossFilterDirection string `json:"cross_filter_direction"`
	IsActive             *bool  `json:"is_active"`
}

// RawQuery is an extracted Power Query (M) transformation query.
type RawQuery struct {
	Name  string `json:"name"`
	Table string `json:"table"`
	Code  string `json:"code"`
}

// RawModel is one complete extraction pass. Fingerprint material (content
// hash + size) is computed by the adapter from the raw source bytes.
type RawModel struct {
	FileInfo      FileInfo
	ContentSHA256 string

	Tables        Section[RawTable]
	Measures      Section[RawMeasure]
	Relationships Section[RawRelationship]
	Queries       Section[RawQuery]
}
