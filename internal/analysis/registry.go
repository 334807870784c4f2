package analysis

import (
	"sort"
	"sync"

	"github.com/pbnj-labs/pbnj/internal/model"
)

// Context carries everything a finding rule may inspect: the model plus the
// counters the engine has already computed. Rules are read-only consumers.
type Context struct {
	Model         *model.Model
	Relationships RelationshipStats
	HiddenTables  int
	Config        Config
}

// CheckFunc is the signature of a finding rule.
type CheckFunc func(ctx *Context) []Finding

// RuleDef is a registered finding rule.
type RuleDef struct {
	ID          string
	Name        string
	Group       string
	Description string
	Severity    Severity
	Check       CheckFunc
}

var registry = struct {
	mu    sync.RWMutex
	rules map[string]RuleDef
}{rules: make(map[string]RuleDef)}

// Register adds a rule to the registry. Call from init functions.
func Register(rule RuleDef) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.rules[rule.ID] = rule
}

// Rules returns all registered rules sorted by ID. Ordering matters: findings
// feed rendered documents, which must be byte-stable across runs.
func Rules() []RuleDef {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	rules := make([]RuleDef, 0, len(registry.rules))
	for _, r := range registry.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// RuleByID returns a registered rule by its ID.
func RuleByID(id string) (RuleDef, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	r, ok := registry.rules[id]
	return r, ok
}
