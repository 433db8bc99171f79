package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// FallbackGroup is the semantic group for columns the catalog does not know.
const FallbackGroup = "Other"

// Entry is the static metadata of one dataset column.
type Entry struct {
	Name       string   `yaml:"name" json:"name" validate:"required,colname"`
	DataType   string   `yaml:"type" json:"type" validate:"required,oneof=string int float binary category datetime"`
	Group      string   `yaml:"group" json:"group" validate:"required"`
	Definition string   `yaml:"definition" json:"definition"`
	Formula    string   `yaml:"formula" json:"formula"`
	Severity   *int     `yaml:"severity,omitempty" json:"severity,omitempty" validate:"omitempty,min=0,max=3"`
	Weight     *float64 `yaml:"weight,omitempty" json:"weight,omitempty" validate:"omitempty,gte=0"`
}

// Formula documents how an engineered feature is derived.
type Formula struct {
	Group     string `yaml:"group" json:"group" validate:"required"`
	Feature   string `yaml:"feature" json:"feature" validate:"required"`
	Formula   string `yaml:"formula" json:"formula" validate:"required"`
	Intuition string `yaml:"intuition" json:"intuition"`
	Targets   string `yaml:"targets" json:"targets"`
}

// FraudType names a fraud subtype and how it presents.
type FraudType struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description" json:"description"`
}

// Signal is the expected fraud-vs-legit direction of a graph feature.
type Signal struct {
	Direction string `yaml:"direction" json:"direction"`
	Pattern   string `yaml:"pattern" json:"pattern"`
}

// Catalog is the feature metadata catalog. It is read-only after Load.
type Catalog struct {
	RulePrefix     string            `yaml:"rule_prefix" json:"rule_prefix" validate:"required"`
	RuleAggregates []string          `yaml:"rule_aggregates" json:"rule_aggregates"`
	Baseline       string            `yaml:"baseline_fraud_type" json:"baseline_fraud_type" validate:"required"`
	Entries        []Entry           `yaml:"entries" json:"entries" validate:"required,min=1,dive"`
	Formulas       []Formula         `yaml:"formulas" json:"formulas" validate:"dive"`
	NullNotes      map[string]string `yaml:"null_notes" json:"null_notes"`
	FraudTypes     []FraudType       `yaml:"fraud_types" json:"fraud_types" validate:"dive"`
	GraphSignals   map[string]Signal `yaml:"graph_signals" json:"graph_signals"`
	SeverityTiers  map[int]string    `yaml:"severity_tiers" json:"severity_tiers"`

	index map[string]int
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file; an empty path selects the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.index = make(map[string]int, len(c.Entries))
	for i, e := range c.Entries {
		c.index[e.Name] = i
	}
	return &c, nil
}

// Raw returns the embedded default catalog bytes.
func Raw() []byte { return defaultCatalog }

var colNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("colname", func(fl validator.FieldLevel) bool {
		return colNameRe.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError lists every catalog problem found.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid catalog: " + strings.Join(e.Problems, "; ")
}

func (c *Catalog) validate() error {
	var problems []string
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate catalog: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}
	seen := make(map[string]bool, len(c.Entries))
	for _, e := range c.Entries {
		if seen[e.Name] {
			problems = append(problems, fmt.Sprintf("entry %q is duplicated", e.Name))
		}
		seen[e.Name] = true
	}
	for lvl := range c.SeverityTiers {
		if lvl < 0 || lvl > 3 {
			problems = append(problems, fmt.Sprintf("severity tier %d outside 0..3", lvl))
		}
	}
	for _, ft := range c.FraudTypes {
		if ft.Name == c.Baseline {
			problems = append(problems, fmt.Sprintf("fraud type %q is the baseline", ft.Name))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", ns)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", ns, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max", "gte":
		return fmt.Sprintf("%s out of range (%s %s)", ns, fe.Tag(), fe.Param())
	case "colname":
		return fmt.Sprintf("%s is not a valid column name", ns)
	default:
		return fmt.Sprintf("%s failed %s validation", ns, fe.Tag())
	}
}

// Lookup returns the entry for a column and whether it was catalogued.
// Unknown columns get a fallback entry in group FallbackGroup.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if i, ok := c.index[name]; ok {
		return c.Entries[i], true
	}
	return Entry{Name: name, Group: FallbackGroup}, false
}

// Group returns the semantic group of a column, or FallbackGroup.
func (c *Catalog) Group(name string) string {
	e, _ := c.Lookup(name)
	return e.Group
}

// NullNote returns the structural-null annotation of a column, if any.
func (c *Catalog) NullNote(name string) string {
	return c.NullNotes[name]
}

// Signal returns the graph signal of a column, or dashes when unknown.
func (c *Catalog) Signal(name string) Signal {
	if s, ok := c.GraphSignals[name]; ok {
		return s
	}
	return Signal{Direction: "–", Pattern: "–"}
}

// FraudTypeNames returns the configured subtypes in catalog order.
func (c *Catalog) FraudTypeNames() []string {
	out := make([]string, len(c.FraudTypes))
	for i, ft := range c.FraudTypes {
		out[i] = ft.Name
	}
	return out
}

// FraudTypeDescription returns the description of a subtype.
func (c *Catalog) FraudTypeDescription(name string) string {
	for _, ft := range c.FraudTypes {
		if ft.Name == name {
			return ft.Description
		}
	}
	return ""
}

// SeverityDescription describes a max-severity bucket.
func (c *Catalog) SeverityDescription(level int) string {
	if s, ok := c.SeverityTiers[level]; ok {
		return s
	}
	return fmt.Sprintf("Severity %d", level)
}

// IsRuleAggregate reports whether name is a derived rule summary column.
func (c *Catalog) IsRuleAggregate(name string) bool {
	for _, a := range c.RuleAggregates {
		if a == name {
			return true
		}
	}
	return false
}
