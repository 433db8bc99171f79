package analysis

import "math"

// GraphComparison contrasts a graph feature between fraud and legit rows.
type GraphComparison struct {
	Feature   string
	Legit     Num
	Fraud     Num
	Ratio     Num
	Direction string
	Pattern   string
}

// Level grades how far the ratio is from parity.
func (g GraphComparison) Level() Level {
	if !g.Ratio.Valid {
		return LevelNone
	}
	abs := math.Abs(Round(g.Ratio.Value, 2))
	switch {
	case abs > 3:
		return LevelHigh
	case abs > 1.5:
		return LevelMedium
	}
	return LevelNone
}

// GraphResult holds descriptive stats and fraud/legit contrasts for the
// graph-derived features present in the data.
type GraphResult struct {
	Stats       []ColumnStats
	Comparisons []GraphComparison
	// Absent lists configured graph features missing or non-numeric in the data.
	Absent []string
}

// Graph analyzes the configured graph features. Columns with no values are
// described but left out of the comparison.
func Graph(in Input) (*GraphResult, error) {
	label := in.label()
	res := &GraphResult{}
	for _, name := range in.Opt.GraphColumns {
		col, ok := in.Data.Column(name)
		if !ok || !col.Kind.Numeric() {
			res.Absent = append(res.Absent, name)
			continue
		}
		res.Stats = append(res.Stats, columnStats(col))
		var legit, fraud moments
		for i := 0; i < col.Len(); i++ {
			v, ok := col.Float(i)
			if !ok {
				continue
			}
			l, ok := label.Float(i)
			if !ok {
				continue
			}
			switch l {
			case 0:
				legit.add(v)
			case 1:
				fraud.add(v)
			}
		}
		if legit.n+fraud.n == 0 {
			continue
		}
		sig := in.Catalog.Signal(name)
		lm, fm := legit.Mean(), fraud.Mean()
		res.Comparisons = append(res.Comparisons, GraphComparison{
			Feature:   name,
			Legit:     lm,
			Fraud:     fm,
			Ratio:     DivNum(fm, lm),
			Direction: sig.Direction,
			Pattern:   sig.Pattern,
		})
	}
	return res, nil
}

func (r *GraphResult) Tables() []Table {
	st := Table{
		Title:   "Section 1 – Descriptive Statistics",
		Columns: []string{"Feature", "Non-Null Count", "Mean", "Std Dev", "Min", "25%", "Median", "75%", "90%", "99%", "Max", "Null %"},
	}
	for _, s := range r.Stats {
		nullPct := 100.0
		if total := s.Count + s.NullCount; total > 0 {
			nullPct = float64(s.NullCount) * 100 / float64(total)
		}
		st.add(Row{Cells: []any{
			s.Feature, s.Count, s.Mean.Cell(4), s.Std.Cell(4), s.Min.Cell(4), s.P25.Cell(4), s.P50.Cell(4),
			s.P75.Cell(4), s.P90.Cell(4), s.P99.Cell(4), s.Max.Cell(4), pct(nullPct, 1),
		}})
	}
	cmp := Table{
		Title:   "Section 2 – Fraud vs Legitimate Mean Comparison",
		Columns: []string{"Feature", "Legit Mean", "Fraud Mean", "Fraud/Legit Ratio", "Signal Direction", "AML Pattern"},
	}
	for _, c := range r.Comparisons {
		cmp.add(Row{
			Cells:     []any{c.Feature, c.Legit.Cell(4), c.Fraud.Cell(4), ratioText(c.Ratio), c.Direction, c.Pattern},
			Level:     c.Level(),
			Undefined: !c.Ratio.Valid,
		})
	}
	return []Table{st, cmp}
}
