package catalog

import (
	"fmt"
	"strings"
)

// Rule is one binary rule-trigger column.
type Rule struct {
	Name     string   `json:"name" yaml:"name"`
	Label    string   `json:"label" yaml:"label"`
	Severity *int     `json:"severity,omitempty" yaml:"severity,omitempty"`
	Weight   *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	// Catalogued is false for rule columns found only in the data.
	Catalogued bool `json:"catalogued" yaml:"catalogued"`
}

// Registry is the ordered set of rule definitions. Order is the tie-break
// used wherever rules are ranked.
type Registry struct {
	rules []Rule
	index map[string]int
}

// NewRegistry collects every catalog entry carrying the rule prefix, minus
// the rule aggregate columns, in catalog order.
func NewRegistry(c *Catalog) (*Registry, error) {
	r := &Registry{index: map[string]int{}}
	for _, e := range c.Entries {
		if !strings.HasPrefix(e.Name, c.RulePrefix) || c.IsRuleAggregate(e.Name) {
			continue
		}
		if err := r.add(Rule{Name: e.Name, Label: e.Definition, Severity: e.Severity, Weight: e.Weight, Catalogued: true}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(rule Rule) error {
	if _, dup := r.index[rule.Name]; dup {
		return fmt.Errorf("rule %q registered twice", rule.Name)
	}
	if rule.Severity != nil && (*rule.Severity < 0 || *rule.Severity > 3) {
		return fmt.Errorf("rule %q severity %d outside 0..3", rule.Name, *rule.Severity)
	}
	if rule.Weight != nil && *rule.Weight < 0 {
		return fmt.Errorf("rule %q has negative weight", rule.Name)
	}
	r.index[rule.Name] = len(r.rules)
	r.rules = append(r.rules, rule)
	return nil
}

// Rules returns the rules in registry order.
func (r *Registry) Rules() []Rule { return r.rules }

// Len returns the number of rules.
func (r *Registry) Len() int { return len(r.rules) }

// Names returns rule names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.rules))
	for i, ru := range r.rules {
		out[i] = ru.Name
	}
	return out
}

// Binding is a registry restricted to the columns of one dataset.
type Binding struct {
	*Registry
	// Missing are catalogued rules absent from the dataset.
	Missing []string
	// Extra are rule-prefixed dataset columns the catalog does not define;
	// they are appended after the catalogued rules in dataset order.
	Extra []string
}

// Bind intersects the registry with a dataset schema.
func (r *Registry) Bind(c *Catalog, columns []string) (*Binding, error) {
	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}
	b := &Binding{Registry: &Registry{index: map[string]int{}}}
	for _, ru := range r.rules {
		if !present[ru.Name] {
			b.Missing = append(b.Missing, ru.Name)
			continue
		}
		if err := b.add(ru); err != nil {
			return nil, err
		}
	}
	for _, col := range columns {
		if !strings.HasPrefix(col, c.RulePrefix) || c.IsRuleAggregate(col) {
			continue
		}
		if _, known := r.index[col]; known {
			continue
		}
		b.Extra = append(b.Extra, col)
		if err := b.add(Rule{Name: col}); err != nil {
			return nil, err
		}
	}
	return b, nil
}
