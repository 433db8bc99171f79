package analysis

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Level grades how strongly a row should be emphasized when rendered.
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "none"
	}
}

// MarshalText renders levels by name in JSON and YAML.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Row is one table row. Cells hold string, int, float64 or nil.
type Row struct {
	Cells []any `json:"cells" yaml:"cells"`
	// Flagged marks a row that crossed its table's threshold.
	Flagged bool  `json:"flagged,omitempty" yaml:"flagged,omitempty"`
	Level   Level `json:"level,omitempty" yaml:"level,omitempty"`
	// Undefined marks a row holding a ratio with a zero or missing denominator.
	Undefined bool `json:"undefined,omitempty" yaml:"undefined,omitempty"`
}

// Table is an ordered, immutable summary table.
type Table struct {
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Note    string   `json:"note,omitempty" yaml:"note,omitempty"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

func (t *Table) add(r Row) { t.Rows = append(t.Rows, r) }

// Num is a float that may be undefined (empty input, zero denominator).
type Num struct {
	Value float64
	Valid bool
}

// Some wraps a defined value; NaN and ±Inf are treated as undefined.
func Some(v float64) Num {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Num{}
	}
	return Num{Value: v, Valid: true}
}

// Div returns a/b, undefined when b is zero.
func Div(a, b float64) Num {
	if b == 0 {
		return Num{}
	}
	return Some(a / b)
}

// DivNum divides guarded numbers.
func DivNum(a, b Num) Num {
	if !a.Valid || !b.Valid {
		return Num{}
	}
	return Div(a.Value, b.Value)
}

// Or returns the value or a fallback when undefined.
func (n Num) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// Cell rounds the value for a table cell; undefined becomes nil.
func (n Num) Cell(places int) any {
	if !n.Valid {
		return nil
	}
	return Round(n.Value, places)
}

// Format applies a printf verb; undefined becomes "N/A".
func (n Num) Format(verb string) string {
	if !n.Valid {
		return "N/A"
	}
	return fmt.Sprintf(verb, n.Value)
}

// Round rounds half away from zero at the given number of decimal places.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(int32(places)).Float64()
	return f
}

// pct2 renders v rounded to two places in shortest form with a percent sign,
// e.g. 60 -> "60.0%", 33.3333 -> "33.33%".
func pct2(v float64) string {
	s := strconv.FormatFloat(Round(v, 2), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s + "%"
}

// pct formats a percentage value with fixed decimals.
func pct(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64) + "%"
}

func ratioText(n Num) string {
	if !n.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.2fx", n.Value)
}
