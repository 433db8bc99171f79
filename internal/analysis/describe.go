package analysis

import (
	"sort"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
)

// ColumnStats is the descriptive summary of one numeric column.
// Undefined statistics (empty column, std with n < 2) are invalid Nums.
type ColumnStats struct {
	Feature   string
	Count     int
	Mean      Num
	Std       Num
	Min       Num
	P25       Num
	P50       Num
	P75       Num
	P90       Num
	P95       Num
	P99       Num
	Max       Num
	NullCount int
	NullPct   float64
}

func columnStats(c *dataset.Column) ColumnStats {
	vals := c.Floats()
	m := momentsOf(vals)
	s := sortedCopy(vals)
	nulls := c.NullCount()
	return ColumnStats{
		Feature:   c.Name,
		Count:     m.n,
		Mean:      m.Mean(),
		Std:       m.Std(),
		Min:       m.Min(),
		P25:       quantile(s, 0.25),
		P50:       quantile(s, 0.50),
		P75:       quantile(s, 0.75),
		P90:       quantile(s, 0.90),
		P95:       quantile(s, 0.95),
		P99:       quantile(s, 0.99),
		Max:       m.Max(),
		NullCount: nulls,
		NullPct:   Round(Div(float64(nulls), float64(c.Len())).Or(0)*100, 2),
	}
}

// DescribeResult holds per-column statistics in dataset order.
type DescribeResult struct {
	Columns []ColumnStats
}

// Describe summarizes every int and float column except internal join keys.
// Boolean columns are left out.
func Describe(in Input) (*DescribeResult, error) {
	res := &DescribeResult{}
	for _, c := range in.Data.Columns() {
		if !quantitative(c) || in.Opt.isInternal(c.Name) {
			continue
		}
		res.Columns = append(res.Columns, columnStats(c))
	}
	return res, nil
}

func (r *DescribeResult) Tables() []Table {
	t := Table{
		Title:   "Descriptive Statistics – Numeric Features",
		Columns: []string{"Feature", "count", "mean", "std", "min", "25%", "50%", "75%", "90%", "95%", "99%", "max", "null_count", "null_pct"},
	}
	for _, s := range r.Columns {
		t.add(Row{Cells: []any{
			s.Feature, s.Count,
			s.Mean.Cell(4), s.Std.Cell(4), s.Min.Cell(4),
			s.P25.Cell(4), s.P50.Cell(4), s.P75.Cell(4), s.P90.Cell(4), s.P95.Cell(4), s.P99.Cell(4),
			s.Max.Cell(4), s.NullCount, s.NullPct,
		}})
	}
	return []Table{t}
}

// MissingRow is the null profile of one column.
type MissingRow struct {
	Column    string
	DataType  string
	NullCount int
	NullPct   float64
	Group     string
	Note      string
}

// Level grades the share of missing values.
func (m MissingRow) Level() Level {
	switch {
	case m.NullCount == 0:
		return LevelNone
	case m.NullPct > 50:
		return LevelHigh
	case m.NullPct > 5:
		return LevelMedium
	default:
		return LevelLow
	}
}

// MissingResult lists every column by descending null count.
type MissingResult struct {
	Rows []MissingRow
}

// Missing profiles nulls for all columns. Ties keep dataset order.
func Missing(in Input) (*MissingResult, error) {
	res := &MissingResult{}
	for _, c := range in.Data.Columns() {
		n := c.NullCount()
		res.Rows = append(res.Rows, MissingRow{
			Column:    c.Name,
			DataType:  c.Kind.String(),
			NullCount: n,
			NullPct:   Round(Div(float64(n), float64(c.Len())).Or(0)*100, 2),
			Group:     in.Catalog.Group(c.Name),
			Note:      in.Catalog.NullNote(c.Name),
		})
	}
	sort.SliceStable(res.Rows, func(a, b int) bool { return res.Rows[a].NullCount > res.Rows[b].NullCount })
	return res, nil
}

func (r *MissingResult) Tables() []Table {
	t := Table{
		Title:   "Missing Value Analysis",
		Columns: []string{"Column", "Data Type", "Null Count", "Null %", "Feature Group", "Notes"},
	}
	for _, m := range r.Rows {
		t.add(Row{
			Cells: []any{m.Column, m.DataType, m.NullCount, pct2(m.NullPct), m.Group, m.Note},
			Level: m.Level(),
		})
	}
	return []Table{t}
}
