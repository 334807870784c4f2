package model

import (
	"fmt"
	"strings"

	"github.com/pbnj-labs/pbnj/internal/extract"
)

// Section names used in Failure entries.
const (
	SectionTables        = "tables"
	SectionMeasures      = "measures"
	SectionRelationships = "relationships"
	SectionQueries       = "power_query"
)

// Failure records one normalization problem: either a whole section that
// could not be read, or a non-fatal integrity warning (name collision,
// dropped record). Failures never abort normalization.
type Failure struct {
	Section string `json:"section"`
	Reason  string `json:"reason"`
	Warning bool   `json:"warning"`
}

func (f Failure) String() string {
	if f.Warning {
		return fmt.Sprintf("%s: warning: %s", f.Section, f.Reason)
	}
	return fmt.Sprintf("%s: %s", f.Section, f.Reason)
}

// Normalize converts one raw extraction pass into a canonical Model. Each
// section is processed independently: a failed section yields a Failure entry
// and an empty slice while every other section normalizes as usual. The only
// fatal condition is a nil RawModel.
func Normalize(raw *extract.RawModel) (*Model, []Failure, error) {
	if raw == nil {
		return nil, nil, extract.ErrNoInput
	}

	m := &Model{
		SourceName:  raw.FileInfo.Name,
		SourcePath:  raw.FileInfo.Path,
		SizeBytes:   raw.FileInfo.SizeBytes,
		Fingerprint: raw.Fingerprint(),
	}

	var failures []Failure

	m.Tables, failures = normalizeTables(raw.Tables, failures)
	m.Measures, failures = normalizeMeasures(raw.Measures, failures)
	m.Relationships, failures = normalizeRelationships(raw.Relationships, m, failures)
	m.Queries, failures = normalizeQueries(raw.Queries, m, failures)

	return m, failures, nil
}

func normalizeTables(sec extract.Section[extract.RawTable], failures []Failure) ([]Table, []Failure) {
	if sec.Failed {
		return nil, append(failures, Failure{Section: SectionTables, Reason: sec.Reason})
	}

	tables := make([]Table, 0, len(sec.Records))
	seen := make(map[string]bool, len(sec.Records))
	for _, rt := range sec.Records {
		if rt.Name == "" {
			failures = append(failures, Failure{
				Section: SectionTables,
				Reason:  "table with empty name dropped",
				Warning: true,
			})
			continue
		}
		if seen[rt.Name] {
			failures = append(failures, Failure{
				Section: SectionTables,
				Reason:  fmt.Sprintf("duplicate table %q; first occurrence kept", rt.Name),
				Warning: true,
			})
			continue
		}
		seen[rt.Name] = true

		t := Table{
			Name:        rt.Name,
			Hidden:      rt.Hidden,
			Description: rt.Description,
			Columns:     make([]Column, 0, len(rt.Columns)),
		}
		seenCols := make(map[string]bool, len(rt.Columns))
		for _, rc := range rt.Columns {
			if rc.Name == "" {
				continue
			}
			if seenCols[rc.Name] {
				failures = append(failures, Failure{
					Section: SectionTables,
					Reason:  fmt.Sprintf("duplicate column %q in table %q; first occurrence kept", rc.Name, rt.Name),
					Warning: true,
				})
				continue
			}
			seenCols[rc.Name] = true

			dt := strings.TrimSpace(rc.DataType)
			if dt == "" {
				dt = TypeUnknown
			}
			t.Columns = append(t.Columns, Column{
				Name:        rc.Name,
				DataType:    dt,
				Description: rc.Description,
			})
		}
		tables = append(tables, t)
	}
	return tables, failures
}

func normalizeMeasures(sec extract.Section[extract.RawMeasure], failures []Failure) ([]Measure, []Failure) {
	if sec.Failed {
		return nil, append(failures, Failure{Section: SectionMeasures, Reason: sec.Reason})
	}

	measures := make([]Measure, 0, len(sec.Records))
	seen := make(map[string]bool, len(sec.Records))
	for _, rm := range sec.Records {
		if rm.Name == "" {
			failures = append(failures, Failure{
				Section: SectionMeasures,
				Reason:  "measure with empty name dropped",
				Warning: true,
			})
			continue
		}
		if seen[rm.Name] {
			failures = append(failures, Failure{
				Section: SectionMeasures,
				Reason:  fmt.Sprintf("duplicate measure %q; first occurrence kept", rm.Name),
				Warning: true,
			})
			continue
		}
		seen[rm.Name] = true

		measures = append(measures, Measure{
			Name:          rm.Name,
			Table:         rm.Table,
			Expression:    rm.Expression,
			Description:   rm.Description,
			DisplayFolder: rm.DisplayFolder,
			FormatString:  rm.FormatString,
			DataType:      rm.DataType,
		})
	}
	return measures, failures
}

func normalizeRelationships(sec extract.Section[extract.RawRelationship], m *Model, failures []Failure) ([]Relationship, []Failure) {
	if sec.Failed {
		return nil, append(failures, Failure{Section: SectionRelationships, Reason: sec.Reason})
	}

	rels := make([]Relationship, 0, len(sec.Records))
	for _, rr := range sec.Records {
		if rr.FromTable == "" && rr.ToTable == "" {
			failures = append(failures, Failure{
				Section: SectionRelationships,
				Reason:  "relationship with no endpoint tables dropped",
				Warning: true,
			})
			continue
		}

		rel := Relationship{
			FromTable:   rr.FromTable,
			FromColumn:  rr.FromColumn,
			ToTable:     rr.ToTable,
			ToColumn:    rr.ToColumn,
			Cardinality: parseCardinality(rr.Cardinality),
			CrossFilter: parseCrossFilter(rr.CrossFilterDirection),
			Active:      rr.IsActive == nil || *rr.IsActive,
		}
		if !m.HasTable(rel.FromTable) || !m.HasTable(rel.ToTable) {
			rel.Dangling = true
		}
		rels = append(rels, rel)
	}
	return rels, failures
}

func normalizeQueries(sec extract.Section[extract.RawQuery], m *Model, failures []Failure) ([]TransformationQuery, []Failure) {
	if sec.Failed {
		return nil, append(failures, Failure{Section: SectionQueries, Reason: sec.Reason})
	}

	queries := make([]TransformationQuery, 0, len(sec.Records))
	for i, rq := range sec.Records {
		name := rq.Name
		if name == "" {
			name = fmt.Sprintf("Query_%d", i+1)
		}

		table := rq.Table
		if table == "" && m.HasTable(name) {
			// M queries are commonly named after the table they load.
			table = name
		}

		queries = append(queries, TransformationQuery{
			Name:   name,
			Table:  table,
			Steps:  ParseSteps(rq.Code),
			Source: rq.Code,
		})
	}
	return queries, failures
}

// parseCardinality maps the extractor's cardinality vocabulary onto the
// canonical tags. Unknown values default to one-to-many, the overwhelmingly
// common case in tabular models; normalization never fails on vocabulary.
func parseCardinality(s string) Cardinality {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1:1", "one-to-one", "onetoone":
		return OneToOne
	case "m:m", "*:*", "many-to-many", "manytomany":
		return ManyToMany
	default:
		return OneToMany
	}
}

// parseCrossFilter maps the extractor's filter-direction vocabulary onto the
// canonical tags. Power BI encodes bidirectional as 2 or "both".
func parseCrossFilter(s string) CrossFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2", "both", "bidirectional", "bothdirections":
		return FilterBoth
	default:
		return FilterSingle
	}
}

// ParseSteps extracts named steps from M source text. This is a lexical scan,
// not an M parser: every non-comment line of the form "name = expression"
// inside the let block counts as one step. Malformed source yields whatever
// steps are recognizable, never an error.
func ParseSteps(code string) []QueryStep {
	var steps []QueryStep
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ","))
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if low := strings.ToLower(line); low == "let" || low == "in" {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		name := strings.TrimSpace(line[:eq])
		if name == "" || strings.ContainsAny(name, "(){}") {
			continue
		}
		steps = append(steps, QueryStep{
			Name:       strings.Trim(name, `#"`),
			Expression: strings.TrimSpace(line[eq+1:]),
		})
	}
	return steps
}
