package analysis

import (
	"fmt"
	"math"
	"sort"
)

// Correlation is one feature's Pearson correlation with the label.
type Correlation struct {
	Rank      int
	Feature   string
	Group     string
	R         float64
	AbsR      float64
	Direction string
	Signal    string
	// N is the number of pairwise-complete rows.
	N int
}

// CorrelationResult ranks features by |r| with the label.
type CorrelationResult struct {
	Ranked []Correlation
	// Excluded lists numeric columns with an undefined correlation.
	Excluded []string
}

func signalStrength(abs float64) string {
	switch {
	case abs > 0.5:
		return "Very Strong"
	case abs > 0.3:
		return "Strong"
	case abs > 0.15:
		return "Moderate"
	case abs > 0.05:
		return "Weak"
	default:
		return "Negligible"
	}
}

func direction(r float64) string {
	if r > 0 {
		return "Positive (↑ with fraud)"
	}
	return "Negative (↓ with fraud)"
}

// Correlations computes r against the label for every other int or float
// column. Zero-variance columns are excluded rather than ranked.
func Correlations(in Input) (*CorrelationResult, error) {
	label := in.label()
	res := &CorrelationResult{}
	for _, c := range in.Data.Columns() {
		if !quantitative(c) || c.Name == in.Opt.LabelColumn || in.Opt.isInternal(c.Name) {
			continue
		}
		r, n, ok := pearson(c, label)
		if !ok {
			res.Excluded = append(res.Excluded, c.Name)
			continue
		}
		res.Ranked = append(res.Ranked, Correlation{
			Feature:   c.Name,
			Group:     in.Catalog.Group(c.Name),
			R:         r,
			AbsR:      math.Abs(r),
			Direction: direction(r),
			Signal:    signalStrength(math.Abs(r)),
			N:         n,
		})
	}
	sort.SliceStable(res.Ranked, func(a, b int) bool { return res.Ranked[a].AbsR > res.Ranked[b].AbsR })
	for i := range res.Ranked {
		res.Ranked[i].Rank = i + 1
	}
	return res, nil
}

func (r *CorrelationResult) Tables() []Table {
	t := Table{
		Title:   "Top Feature Correlations with Fraud Label (Pearson r)",
		Columns: []string{"Rank", "Feature", "Feature Group", "Pearson r", "|r|", "Direction", "Signal Strength"},
	}
	for _, c := range r.Ranked {
		row := Row{Cells: []any{c.Rank, c.Feature, c.Group, Round(c.R, 4), Round(c.AbsR, 4), c.Direction, c.Signal}}
		switch {
		case c.AbsR > 0.5:
			row.Level = LevelCritical
		case c.AbsR > 0.3:
			row.Level = LevelHigh
		case c.AbsR > 0.15:
			row.Level = LevelMedium
		case c.AbsR > 0.05:
			row.Level = LevelLow
		}
		t.add(row)
	}
	return []Table{t}
}

// Warnings names the columns left out of the ranking.
func (r *CorrelationResult) Warnings() []string {
	out := make([]string, 0, len(r.Excluded))
	for _, c := range r.Excluded {
		out = append(out, fmt.Sprintf("correlation with label undefined for %s (zero variance or fewer than 2 complete rows)", c))
	}
	return out
}
