// Package model defines the canonical, normalized representation of one
// Power BI file's structure and the normalizer that builds it from raw
// extraction output. A Model is immutable once built: re-extraction produces
// a new Model with a new fingerprint, never an in-place mutation.
package model

// TypeUnknown is the explicit data type assigned to columns whose type the
// extractor could not determine. It is a valid state, not an error.
const TypeUnknown = "unknown"

// Cardinality classifies a relationship's endpoint multiplicity.
type Cardinality string

// Cardinality values.
const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToMany Cardinality = "many-to-many"
)

// CrossFilter is the filter propagation direction of a relationship.
type CrossFilter string

// CrossFilter values.
const (
	FilterSingle CrossFilter = "single"
	FilterBoth   CrossFilter = "both"
)

// Column is a table column. DataType is TypeUnknown when extraction could not
// determine it.
type Column struct {
	Name        string `json:"name"`
	DataType    string `json:"data_type"`
	Description string `json:"description,omitempty"`
}

// Table is a model table with an ordered column sequence. Names are unique
// within a Model, case-sensitive.
type Table struct {
	Name        string   `json:"name"`
	Hidden      bool     `json:"hidden"`
	Description string   `json:"description,omitempty"`
	Columns     []Column `json:"columns"`
}

// Measure is a DAX measure. The expression is an opaque string; it is scanned
// for function tokens by the analysis engine but never parsed into an AST.
type Measure struct {
	Name          string `json:"name"`
	Table         string `json:"table"`
	Expression    string `json:"expression"`
	Description   string `json:"description,omitempty"`
	DisplayFolder string `json:"display_folder,omitempty"`
	FormatString  string `json:"format_string,omitempty"`
	DataType      string `json:"data_type,omitempty"`
}

// Relationship is a directed table relationship. A relationship whose
// endpoint table is absent from the Model is retained with Dangling set so
// documentation can surface the anomaly instead of silently dropping it.
type Relationship struct {
	FromTable   string      `json:"from_table"`
	FromColumn  string      `json:"from_column"`
	ToTable     string      `json:"to_table"`
	ToColumn    string      `json:"to_column"`
	Cardinality Cardinality `json:"cardinality"`
	CrossFilter CrossFilter `json:"cross_filter"`
	Active      bool        `json:"active"`
	Dangling    bool        `json:"dangling"`
}

// QueryStep is one named transformation step inside a Power Query.
type QueryStep struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// TransformationQuery is a named, ordered sequence of data-reshaping steps
// producing one table's contents, plus the full M source text.
type TransformationQuery struct {
	Name   string      `json:"name"`
	Table  string      `json:"table,omitempty"`
	Steps  []QueryStep `json:"steps"`
	Source string      `json:"source"`
}

// Model is the root aggregate for one extraction pass, identified by a
// content-derived fingerprint.
type Model struct {
	SourceName  string `json:"source_name"`
	SourcePath  string `json:"source_path,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
	Fingerprint string `json:"fingerprint"`

	Tables        []Table               `json:"tables"`
	Measures      []Measure             `json:"measures"`
	Relationships []Relationship        `json:"relationships"`
	Queries       []TransformationQuery `json:"queries"`
}

// TableByName returns the table with the given name, or nil.
func (m *Model) TableByName(name string) *Table {
	for i := range m.Tables {
		if m.Tables[i].Name == name {
			return &m.Tables[i]
		}
	}
	return nil
}

// HasTable reports whether a table with the given name exists.
func (m *Model) HasTable(name string) bool {
	return m.TableByName(name) != nil
}

// ColumnCount returns the total number of columns across all tables.
func (m *Model) ColumnCount() int {
	n := 0
	for i := range m.Tables {
		n += len(m.Tables[i].Columns)
	}
	return n
}

// DanglingCount returns the number of relationships flagged dangling.
func (m *Model) DanglingCount() int {
	n := 0
	for i := range m.Relationships {
		if m.Relationships[i].Dangling {
			n++
		}
	}
	return n
}

// Empty reports whether the model has no tables, measures, relationships,
// or transformation queries.
func (m *Model) Empty() bool {
	return len(m.Tables) == 0 && len(m.Measures) == 0 &&
		len(m.Relationships) == 0 && len(m.Queries) == 0
}
