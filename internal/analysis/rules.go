package analysis

import "fmt"

func init() {
	Register(RuleDef{
		ID:          "RQ01",
		Name:        "inactive-relationships",
		Group:       "relationships",
		Description: "Model contains inactive relationships",
		Severity:    SeverityWarning,
		Check: func(ctx *Context) []Finding {
			if ctx.Relationships.Inactive == 0 {
				return nil
			}
			return []Finding{{
				RuleID:   "RQ01",
				Severity: SeverityWarning,
				Message: fmt.Sprintf("%d inactive relationships may indicate model complexity",
					ctx.Relationships.Inactive),
			}}
		},
	})

	Register(RuleDef{
		ID:          "RQ02",
		Name:        "bidirectional-filtering",
		Group:       "relationships",
		Description: "Model contains bidirectional cross-filter relationships",
		Severity:    SeverityWarning,
		Check: func(ctx *Context) []Finding {
			if ctx.Relationships.Bidirectional == 0 {
				return nil
			}
			return []Finding{{
				RuleID:   "RQ02",
				Severity: SeverityWarning,
				Message: fmt.Sprintf("%d relationships use bidirectional filtering, which may affect performance",
					ctx.Relationships.Bidirectional),
			}}
		},
	})

	Register(RuleDef{
		ID:          "RQ03",
		Name:        "dangling-relationships",
		Group:       "relationships",
		Description: "Relationships reference tables absent from the model",
		Severity:    SeverityError,
		Check: func(ctx *Context) []Finding {
			if ctx.Relationships.Dangling == 0 {
				return nil
			}
			return []Finding{{
				RuleID:   "RQ03",
				Severity: SeverityError,
				Message: fmt.Sprintf("%d relationships reference tables not present in the model",
					ctx.Relationships.Dangling),
			}}
		},
	})

	Register(RuleDef{
		ID:          "ST01",
		Name:        "hidden-tables",
		Group:       "structure",
		Description: "Model contains hidden tables",
		Severity:    SeverityInfo,
		Check: func(ctx *Context) []Finding {
			if ctx.HiddenTables == 0 {
				return nil
			}
			return []Finding{{
				RuleID:   "ST01",
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("%d tables are hidden from report view", ctx.HiddenTables),
			}}
		},
	})

	// Empty-category rules: an empty model is a valid input and each absent
	// category gets an explicit "no data found" finding instead of silence.
	Register(RuleDef{
		ID:          "EM01",
		Name:        "no-tables",
		Group:       "empty",
		Description: "Model has no tables",
		Severity:    SeverityInfo,
		Check: func(ctx *Context) []Finding {
			if len(ctx.Model.Tables) > 0 {
				return nil
			}
			return []Finding{{RuleID: "EM01", Severity: SeverityInfo, Message: "no tables found"}}
		},
	})

	Register(RuleDef{
		ID:          "EM02",
		Name:        "no-measures",
		Group:       "empty",
		Description: "Model has no measures",
		Severity:    SeverityInfo,
		Check: func(ctx *Context) []Finding {
			if len(ctx.Model.Measures) > 0 {
				return nil
			}
			return []Finding{{RuleID: "EM02", Severity: SeverityInfo, Message: "no measures found"}}
		},
	})

	Register(RuleDef{
		ID:          "EM03",
		Name:        "no-relationships",
		Group:       "empty",
		Description: "Model has no relationships",
		Severity:    SeverityInfo,
		Check: func(ctx *Context) []Finding {
			if len(ctx.Model.Relationships) > 0 {
				return nil
			}
			return []Finding{{RuleID: "EM03", Severity: SeverityInfo, Message: "no relationships found"}}
		},
	})

	Register(RuleDef{
		ID:          "EM04",
		Name:        "no-transformation-queries",
		Group:       "empty",
		Description: "Model has no transformation queries",
		Severity:    SeverityInfo,
		Check: func(ctx *Context) []Finding {
			if len(ctx.Model.Queries) > 0 {
				return nil
			}
			return []Finding{{RuleID: "EM04", Severity: SeverityInfo, Message: "no transformation queries found"}}
		},
	})
}
