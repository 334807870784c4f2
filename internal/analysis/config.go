package analysis

// Config holds the configurable thresholds for the classification heuristics.
// The defaults reproduce the observed behavior of the documentation tool this
// engine replaces; they are heuristics, not universal truths, which is why
// they live in configuration rather than in the classifiers.
type Config struct {
	// FactFanoutThreshold is the minimum number of distinct outgoing
	// relationship targets for a table to classify as a fact table.
	FactFanoutThreshold int `koanf:"fact_fanout_threshold"`

	// ComplexFunctionThreshold is the minimum number of distinct
	// control-flow DAX functions in a measure for it to classify complex.
	ComplexFunctionThreshold int `koanf:"complex_function_threshold"`

	// DisabledRules lists finding rule IDs to skip.
	DisabledRules []string `koanf:"disabled_rules"`

	// Severity maps rule ID to a severity override (error, warning, info).
	Severity map[string]string `koanf:"severity"`
}

// DefaultConfig returns the default analysis configuration.
func DefaultConfig() Config {
	return Config{
		FactFanoutThreshold:      2,
		ComplexFunctionThreshold: 2,
	}
}

// normalized returns a copy with zero thresholds replaced by defaults, so a
// partially populated config from file or flags still behaves sanely.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.FactFanoutThreshold <= 0 {
		c.FactFanoutThreshold = def.FactFanoutThreshold
	}
	if c.ComplexFunctionThreshold <= 0 {
		c.ComplexFunctionThreshold = def.ComplexFunctionThreshold
	}
	return c
}

func (c Config) isDisabled(ruleID string) bool {
	for _, id := range c.DisabledRules {
		if id == ruleID {
			return true
		}
	}
	return false
}

func (c Config) severityFor(ruleID string, def Severity) Severity {
	switch c.Severity[ruleID] {
	case "error":
		return SeverityError
	case "warning":
		return SeverityWarning
	case "info":
		return SeverityInfo
	default:
		return def
	}
}
