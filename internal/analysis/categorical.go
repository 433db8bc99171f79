package analysis

import (
	"fmt"
	"sort"
)

// NullValue is the display value of the missing-value group.
const NullValue = "(missing)"

// CategoryStat is one value of a categorical column.
type CategoryStat struct {
	Value string
	Null  bool
	Total int
	// PctAll is the share of all rows in percent, 2 dp.
	PctAll float64
	Fraud  int
	// FraudRate is the mean label within the value (0..1).
	FraudRate float64
	Flagged   bool
}

// CategoricalProfile is the distribution of one column.
type CategoricalProfile struct {
	Column string
	Label  string
	Values []CategoryStat
}

// CategoricalResult holds one profile per configured column present in the data.
type CategoricalResult struct {
	Profiles []CategoricalProfile
}

// Categorical profiles each configured categorical column by value,
// with nulls grouped under NullValue.
func Categorical(in Input) (*CategoricalResult, error) {
	label := in.label()
	rows := float64(in.Data.Rows())
	res := &CategoricalResult{}
	for _, f := range in.Opt.CategoricalColumns {
		col, ok := in.Data.Column(f.Column)
		if !ok {
			continue
		}
		groups := groupBy(col, label, true)
		sort.SliceStable(groups, func(a, b int) bool { return groups[a].stats.rows > groups[b].stats.rows })
		p := CategoricalProfile{Column: f.Column, Label: f.Label}
		for _, g := range groups {
			v := g.key
			if g.null {
				v = NullValue
			}
			rate := g.stats.Rate()
			p.Values = append(p.Values, CategoryStat{
				Value:     v,
				Null:      g.null,
				Total:     g.stats.rows,
				PctAll:    Round(Div(float64(g.stats.rows), rows).Or(0)*100, 2),
				Fraud:     g.stats.FraudCount(),
				FraudRate: rate,
				Flagged:   rate > in.Opt.CategoricalFlagRate,
			})
		}
		res.Profiles = append(res.Profiles, p)
	}
	return res, nil
}

func (r *CategoricalResult) Tables() []Table {
	out := make([]Table, 0, len(r.Profiles))
	for _, p := range r.Profiles {
		t := Table{
			Title:   fmt.Sprintf("%s  [%s]", p.Label, p.Column),
			Columns: []string{"Value", "Total Count", "% of All", "Fraud Count", "Fraud Rate (%)"},
		}
		for _, v := range p.Values {
			row := Row{Cells: []any{v.Value, v.Total, pct2(v.PctAll), v.Fraud, pct(v.FraudRate*100, 1)}, Flagged: v.Flagged}
			if v.Flagged {
				row.Level = LevelHigh
			}
			t.add(row)
		}
		out = append(out, t)
	}
	return out
}
