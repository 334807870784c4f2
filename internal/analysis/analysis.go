// Package analysis derives read-only analytics from a normalized Model:
// star-schema role classification, measure complexity, relationship quality,
// and best-practice findings. Analyze is a pure, total function; missing data
// yields unclassified/zero-count results, never an error.
package analysis

// Role is the star-schema classification of a table.
type Role string

// Role values.
const (
	RoleFact         Role = "fact"
	RoleDimension    Role = "dimension"
	RoleUnclassified Role = "unclassified"
)

// Complexity is the lexical complexity bucket of a measure.
type Complexity string

// Complexity values.
const (
	ComplexitySimple  Complexity = "simple"
	ComplexityComplex Complexity = "complex"
)

// Severity indicates the importance of a finding.
type Severity int

// Severity levels.
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

// String returns the lowercase severity label.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Finding is one best-practice observation emitted by a registered rule.
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// RelationshipStats aggregates relationship-quality counters over a model.
type RelationshipStats struct {
	Total         int     `json:"total"`
	Active        int     `json:"active"`
	Inactive      int     `json:"inactive"`
	Bidirectional int     `json:"bidirectional"`
	Dangling      int     `json:"dangling"`
	ActiveRatio   float64 `json:"active_ratio"`
}

// Analysis is the full derived view over one Model. It is recomputed from the
// Model on demand and carries no state of its own.
type Analysis struct {
	TableRoles        map[string]Role       `json:"table_roles"`
	FactCount         int                   `json:"fact_count"`
	DimensionCount    int                   `json:"dimension_count"`
	MeasureComplexity map[string]Complexity `json:"measure_complexity"`
	ComplexMeasures   int                   `json:"complex_measures"`
	Relationships     RelationshipStats     `json:"relationships"`
	HiddenTables      int                   `json:"hidden_tables"`
	ComplexityScore   int                   `json:"complexity_score"`
	DataSources       []string              `json:"data_sources"`
	KeyMetrics        []string              `json:"key_metrics"`
	Findings          []Finding             `json:"findings"`
}

// RoleOf returns the classified role for a table name.
func (a *Analysis) RoleOf(table string) Role {
	if r, ok := a.TableRoles[table]; ok {
		return r
	}
	return RoleUnclassified
}

// ComplexityOf returns the complexity bucket for a measure name.
func (a *Analysis) ComplexityOf(measure string) Complexity {
	if c, ok := a.MeasureComplexity[measure]; ok {
		return c
	}
	return ComplexitySimple
}
