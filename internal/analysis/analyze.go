package analysis

import (
	"sort"
	"strings"

	"github.com/pbnj-labs/pbnj/internal/model"
)

// keyMetricLimit caps how many measure names are surfaced as key metrics in
// the business summary.
const keyMetricLimit = 5

// Analyze computes the full derived view over a model. It is pure and total:
// the same model and config always produce the same Analysis, and an empty
// model produces zeroed counts with explicit "no data found" findings.
func Analyze(m *model.Model, cfg Config) *Analysis {
	cfg = cfg.normalized()

	a := &Analysis{
		TableRoles:        make(map[string]Role, len(m.Tables)),
		MeasureComplexity: make(map[string]Complexity, len(m.Measures)),
	}

	classifyTables(m, cfg, a)

	for _, ms := range m.Measures {
		c := classifyMeasure(ms.Expression, cfg.ComplexFunctionThreshold)
		a.MeasureComplexity[ms.Name] = c
		if c == ComplexityComplex {
			a.ComplexMeasures++
		}
	}

	a.Relationships = relationshipStats(m)

	for i := range m.Tables {
		if m.Tables[i].Hidden {
			a.HiddenTables++
		}
	}

	a.ComplexityScore = complexityScore(m)
	a.DataSources = detectDataSources(m)
	a.KeyMetrics = keyMetrics(m)
	a.Findings = runRules(m, cfg, a)

	return a
}

// classifyTables assigns star-schema roles. A table whose non-dangling
// outgoing relationships reach at least FactFanoutThreshold distinct target
// tables is a fact; otherwise a table receiving at least one relationship is
// a dimension; tables with no relationships stay unclassified. A table
// qualifying as both is a fact: fact tables commonly also receive inactive
// alternate relationships.
func classifyTables(m *model.Model, cfg Config, a *Analysis) {
	fanout := make(map[string]map[string]bool)
	incoming := make(map[string]bool)

	for _, rel := range m.Relationships {
		if rel.Dangling {
			continue
		}
		targets := fanout[rel.FromTable]
		if targets == nil {
			targets = make(map[string]bool)
			fanout[rel.FromTable] = targets
		}
		targets[rel.ToTable] = true
		incoming[rel.ToTable] = true
	}

	for i := range m.Tables {
		name := m.Tables[i].Name
		switch {
		case len(fanout[name]) >= cfg.FactFanoutThreshold:
			a.TableRoles[name] = RoleFact
			a.FactCount++
		case incoming[name]:
			a.TableRoles[name] = RoleDimension
			a.DimensionCount++
		default:
			a.TableRoles[name] = RoleUnclassified
		}
	}
}

func relationshipStats(m *model.Model) RelationshipStats {
	s := RelationshipStats{Total: len(m.Relationships)}
	for _, rel := range m.Relationships {
		if rel.Active {
			s.Active++
		} else {
			s.Inactive++
		}
		if rel.CrossFilter == model.FilterBoth {
			s.Bidirectional++
		}
		if rel.Dangling {
			s.Dangling++
		}
	}
	if s.Total > 0 {
		s.ActiveRatio = float64(s.Active) / float64(s.Total)
	}
	return s
}

// complexityScore is a coarse whole-model score: tables and queries weigh 2,
// measures 3, relationships 1.
func complexityScore(m *model.Model) int {
	return len(m.Tables)*2 + len(m.Measures)*3 + len(m.Relationships) + len(m.Queries)*2
}

// dataSourceMarkers maps M connector tokens to human-readable source names.
var dataSourceMarkers = []struct {
	token  string
	source string
}{
	{"Excel.Workbook", "Excel"},
	{"Sql.Database", "SQL Server"},
	{"SharePoint.Tables", "SharePoint"},
	{"SharePoint.Files", "SharePoint"},
	{"Web.Contents", "Web"},
	{"OData.Feed", "OData"},
	{"Csv.Document", "CSV"},
}

// detectDataSources scans transformation query source text for connector
// function tokens. Returned names are deduplicated and sorted.
func detectDataSources(m *model.Model) []string {
	found := make(map[string]bool)
	for _, q := range m.Queries {
		for _, marker := range dataSourceMarkers {
			if strings.Contains(q.Source, marker.token) {
				found[marker.source] = true
			}
		}
	}

	sources := make([]string, 0, len(found))
	for s := range found {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}

// keyMetrics returns the first few measure names in model order.
func keyMetrics(m *model.Model) []string {
	limit := keyMetricLimit
	if len(m.Measures) < limit {
		limit = len(m.Measures)
	}
	metrics := make([]string, 0, limit)
	for _, ms := range m.Measures[:limit] {
		metrics = append(metrics, ms.Name)
	}
	return metrics
}

// runRules evaluates registered finding rules in ID order, honoring disabled
// rules and severity overrides from config.
func runRules(m *model.Model, cfg Config, a *Analysis) []Finding {
	ctx := &Context{
		Model:         m,
		Relationships: a.Relationships,
		HiddenTables:  a.HiddenTables,
		Config:        cfg,
	}

	var findings []Finding
	for _, rule := range Rules() {
		if cfg.isDisabled(rule.ID) {
			continue
		}
		for _, f := range rule.Check(ctx) {
			f.Severity = cfg.severityFor(rule.ID, f.Severity)
			findings = append(findings, f)
		}
	}
	return findings
}
