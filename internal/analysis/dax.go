package analysis

import (
	"sort"
	"strings"
	"unicode"
)

// DAX function registry used by the complexity heuristic. The scan is purely
// lexical: function names are matched as word tokens followed by an opening
// parenthesis, so the formula does not need to be syntactically valid.
var (
	// aggregationFunctions are plain aggregators; their presence alone
	// keeps a measure in the simple bucket.
	aggregationFunctions = []string{
		"SUM", "AVERAGE", "MIN", "MAX", "COUNT", "COUNTA",
		"COUNTROWS", "DISTINCTCOUNT", "DIVIDE",
	}

	// iterationFunctions introduce row context over a table expression.
	iterationFunctions = []string{
		"SUMX", "AVERAGEX", "MINX", "MAXX", "COUNTX",
		"RANKX", "CONCATENATEX", "PRODUCTX",
	}

	// controlFlowFunctions modify filter context or conditionally branch;
	// two or more distinct ones mark a measure as complex.
	controlFlowFunctions = []string{
		"CALCULATE", "CALCULATETABLE", "FILTER", "ALL", "ALLEXCEPT",
		"ALLSELECTED", "REMOVEFILTERS", "KEEPFILTERS", "USERELATIONSHIP",
		"CROSSFILTER", "IF", "SWITCH", "SELECTEDVALUE", "HASONEVALUE",
		"VALUES", "EARLIER", "TREATAS",
	}
)

// ScanFunctions returns the distinct registry functions referenced by a DAX
// expression, sorted for deterministic output.
func ScanFunctions(expr string) []string {
	found := make(map[string]bool)
	scanInto(expr, aggregationFunctions, found)
	scanInto(expr, iterationFunctions, found)
	scanInto(expr, controlFlowFunctions, found)

	names := make([]string, 0, len(found))
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// classifyMeasure buckets a measure expression by counting distinct
// control-flow functions against the configured threshold.
func classifyMeasure(expr string, threshold int) Complexity {
	found := make(map[string]bool)
	scanInto(expr, controlFlowFunctions, found)
	if len(found) >= threshold {
		return ComplexityComplex
	}
	return ComplexitySimple
}

func scanInto(expr string, registry []string, found map[string]bool) {
	upper := strings.ToUpper(expr)
	for _, fn := range registry {
		if found[fn] {
			continue
		}
		if containsFunctionToken(upper, fn) {
			found[fn] = true
		}
	}
}

// containsFunctionToken reports whether fn appears in expr as a standalone
// identifier followed by '('. Prevents SUM from matching SUMX or CHECKSUM.
func containsFunctionToken(expr, fn string) bool {
	for start := 0; ; {
		idx := strings.Index(expr[start:], fn)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(fn)

		beforeOK := idx == 0 || !isIdentRune(rune(expr[idx-1]))
		afterOK := false
		if beforeOK && end < len(expr) && !isIdentRune(rune(expr[end])) {
			// Skip whitespace between name and parenthesis.
			rest := strings.TrimLeftFunc(expr[end:], unicode.IsSpace)
			afterOK = strings.HasPrefix(rest, "(")
		}
		if beforeOK && afterOK {
			return true
		}
		start = end
		if start >= len(expr) {
			return false
		}
	}
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
