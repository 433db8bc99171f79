package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind is the inferred storage type of a column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "datetime"
	default:
		return "string"
	}
}

// Numeric reports whether values of this kind read as numbers.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat || k == KindBool
}

// TimeLayout is the rendering used for datetime cells.
const TimeLayout = "2006-01-02 15:04:05"

// Column is a typed, nullable vector of values.
type Column struct {
	Name string
	Kind Kind

	nums  []float64
	strs  []string
	times []time.Time
	valid []bool
}

// NewNumeric builds a numeric column. A nil valid slice marks every value present.
func NewNumeric(name string, kind Kind, vals []float64, valid []bool) *Column {
	if !kind.Numeric() {
		kind = KindFloat
	}
	return &Column{Name: name, Kind: kind, nums: vals, valid: fillValid(valid, len(vals))}
}

// NewStrings builds a string column. A nil valid slice marks every value present.
func NewStrings(name string, vals []string, valid []bool) *Column {
	return &Column{Name: name, Kind: KindString, strs: vals, valid: fillValid(valid, len(vals))}
}

// NewTimes builds a datetime column.
func NewTimes(name string, vals []time.Time, valid []bool) *Column {
	return &Column{Name: name, Kind: KindTime, times: vals, valid: fillValid(valid, len(vals))}
}

func fillValid(valid []bool, n int) []bool {
	if valid != nil {
		return valid
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.valid) }

// IsNull reports whether cell i is missing.
func (c *Column) IsNull(i int) bool { return !c.valid[i] }

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Float returns the numeric value of cell i. ok is false for nulls and non-numeric columns.
func (c *Column) Float(i int) (float64, bool) {
	if !c.Kind.Numeric() || !c.valid[i] {
		return 0, false
	}
	return c.nums[i], true
}

// Time returns the datetime value of cell i.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.Kind != KindTime || !c.valid[i] {
		return time.Time{}, false
	}
	return c.times[i], true
}

// String renders cell i as text; ok is false for nulls.
func (c *Column) String(i int) (string, bool) {
	if !c.valid[i] {
		return "", false
	}
	switch c.Kind {
	case KindString:
		return c.strs[i], true
	case KindTime:
		return c.times[i].Format(TimeLayout), true
	case KindBool:
		if c.nums[i] != 0 {
			return "true", true
		}
		return "false", true
	case KindInt:
		return strconv.FormatInt(int64(c.nums[i]), 10), true
	default:
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64), true
	}
}

// Floats returns the non-null numeric values in row order.
func (c *Column) Floats() []float64 {
	if !c.Kind.Numeric() {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if c.valid[i] {
			out = append(out, v)
		}
	}
	return out
}

// Dataset is an ordered set of equal-length columns. It is not modified after load.
type Dataset struct {
	Name  string
	cols  []*Column
	index map[string]int
	rows  int
}

// New validates and assembles columns into a Dataset.
func New(name string, cols ...*Column) (*Dataset, error) {
	d := &Dataset{Name: name, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			d.rows = c.Len()
		} else if c.Len() != d.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), d.rows)
		}
		d.index[c.Name] = i
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// Rows returns the row count.
func (d *Dataset) Rows() int { return d.rows }

// Columns returns the columns in source order.
func (d *Dataset) Columns() []*Column { return d.cols }

// Names returns the column names in source order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

// Has reports whether the named column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Require returns a MissingColumnError for the first absent column.
func (d *Dataset) Require(names ...string) error {
	for _, n := range names {
		if !d.Has(n) {
			return &MissingColumnError{Dataset: d.Name, Column: n, Reason: "not found"}
		}
	}
	return nil
}

// RequireNumeric is Require plus a numeric kind check.
func (d *Dataset) RequireNumeric(name string) error {
	c, ok := d.Column(name)
	if !ok {
		return &MissingColumnError{Dataset: d.Name, Column: name, Reason: "not found"}
	}
	if !c.Kind.Numeric() {
		return &MissingColumnError{Dataset: d.Name, Column: name, Reason: "not numeric (" + c.Kind.String() + ")"}
	}
	return nil
}

// MissingColumnError reports a required column that is absent or unusable.
type MissingColumnError struct {
	Dataset string
	Column  string
	Reason  string
}

func (e *MissingColumnError) Error() string {
	var b strings.Builder
	b.WriteString("required column ")
	b.WriteString(strconv.Quote(e.Column))
	if e.Reason != "" {
		b.WriteString(" ")
		b.WriteString(e.Reason)
	}
	if e.Dataset != "" {
		b.WriteString(" in ")
		b.WriteString(e.Dataset)
	}
	return b.String()
}
