package analysis

import (
	"sort"

	"github.com/KaramelBytes/fraudeda-cli/internal/catalog"
	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
)

// RuleStat is the effectiveness of one rule. Rates are percentages.
type RuleStat struct {
	Name     string
	Label    string
	Severity *int
	Weight   *float64
	// TriggerCount is the sum of the rule column.
	TriggerCount      int
	TriggerRate       float64
	FraudTriggered    float64
	FraudNotTriggered Num
	// Lift is FraudTriggered / FraudNotTriggered; undefined on a zero or
	// missing denominator.
	Lift     Num
	Strength string
}

// Bucket is one value of a grouped integer column.
type Bucket struct {
	Value       int
	Description string
	Total       int
	PctAll      float64
	Fraud       int
	// FraudRate is the mean label (0..1).
	FraudRate float64
	Flagged   bool
}

// RuleResult holds per-rule stats and the rule aggregate distributions.
type RuleResult struct {
	Rules         []RuleStat
	TriggerCounts []Bucket
	Severities    []Bucket
	// Skipped lists rule columns that are not numeric.
	Skipped []string
}

func strength(triggeredPct float64) string {
	switch {
	case triggeredPct > 50:
		return "Very High"
	case triggeredPct > 30:
		return "High"
	case triggeredPct > 15:
		return "Medium"
	default:
		return "Low"
	}
}

// Rules evaluates every bound rule against the label, ranked by fraud rate
// when triggered. Ties keep registry order.
func Rules(in Input) (*RuleResult, error) {
	label := in.label()
	res := &RuleResult{}
	for _, rule := range in.Rules.Rules() {
		col, ok := in.Data.Column(rule.Name)
		if !ok {
			continue
		}
		if !col.Kind.Numeric() {
			res.Skipped = append(res.Skipped, rule.Name)
			continue
		}
		res.Rules = append(res.Rules, ruleStat(rule, col, label))
	}
	sort.SliceStable(res.Rules, func(a, b int) bool { return res.Rules[a].FraudTriggered > res.Rules[b].FraudTriggered })

	if col, ok := in.Data.Column(in.Opt.TriggerCountColumn); ok && col.Kind.Numeric() {
		res.TriggerCounts = buckets(col, label, in.Opt.TriggerCountFlagRate, nil)
	}
	if col, ok := in.Data.Column(in.Opt.MaxSeverityColumn); ok && col.Kind.Numeric() {
		res.Severities = buckets(col, label, in.Opt.SeverityFlagRate, in.Catalog.SeverityDescription)
	}
	return res, nil
}

func ruleStat(rule catalog.Rule, col, label *dataset.Column) RuleStat {
	var sum, n float64
	var on, off labelStats
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float(i)
		if !ok {
			continue
		}
		sum += v
		n++
		switch v {
		case 1:
			on.add(label, i)
		case 0:
			off.add(label, i)
		}
	}
	ft := Div(on.fraud, float64(on.labeled)).Or(0) * 100
	fn := Div(off.fraud, float64(off.labeled))
	if fn.Valid {
		fn.Value *= 100
	}
	return RuleStat{
		Name:              rule.Name,
		Label:             rule.Label,
		Severity:          rule.Severity,
		Weight:            rule.Weight,
		TriggerCount:      int(sum),
		TriggerRate:       Div(sum, n).Or(0) * 100,
		FraudTriggered:    ft,
		FraudNotTriggered: fn,
		Lift:              DivNum(Some(ft), fn),
		Strength:          strength(ft),
	}
}

func buckets(col, label *dataset.Column, flagAt float64, describe func(int) string) []Bucket {
	rows := float64(col.Len())
	var out []Bucket
	for _, g := range groupBy(col, label, false) {
		rate := g.stats.Rate()
		b := Bucket{
			Value:     int(g.num),
			Total:     g.stats.rows,
			PctAll:    Div(float64(g.stats.rows), rows).Or(0) * 100,
			Fraud:     g.stats.FraudCount(),
			FraudRate: rate,
			Flagged:   rate > flagAt,
		}
		if describe != nil {
			b.Description = describe(b.Value)
		}
		out = append(out, b)
	}
	return out
}

// ruleAttrs reports whether any rule carries a severity or a weight; the
// matching columns are rendered only then.
func ruleAttrs(rules []RuleStat) (sev, weight bool) {
	for _, s := range rules {
		sev = sev || s.Severity != nil
		weight = weight || s.Weight != nil
	}
	return sev, weight
}

func (r *RuleResult) Tables() []Table {
	withSev, withWeight := ruleAttrs(r.Rules)
	cols := []string{"Rule Name", "Description"}
	if withSev {
		cols = append(cols, "Severity")
	}
	if withWeight {
		cols = append(cols, "Weight")
	}
	t := Table{
		Title: "Rule Effectiveness – Fraud Rate When Triggered vs Not Triggered",
		Columns: append(cols, "Trigger Count", "Trigger Rate (%)",
			"Fraud Rate When Triggered (%)", "Fraud Rate When NOT Triggered (%)", "Lift (ratio)", "Signal Strength"),
	}
	for _, s := range r.Rules {
		cells := []any{s.Name, s.Label}
		if withSev {
			cells = append(cells, optInt(s.Severity))
		}
		if withWeight {
			cells = append(cells, optFloat(s.Weight))
		}
		row := Row{
			Cells: append(cells, s.TriggerCount, pct(s.TriggerRate, 2),
				pct(s.FraudTriggered, 1), s.FraudNotTriggered.Format("%.1f%%"), ratioText(s.Lift), s.Strength),
			Undefined: !s.Lift.Valid,
		}
		switch s.Strength {
		case "Very High":
			row.Level = LevelCritical
		case "High":
			row.Level = LevelHigh
		case "Medium":
			row.Level = LevelMedium
		}
		t.add(row)
	}
	out := []Table{t}
	if len(r.TriggerCounts) > 0 {
		tc := Table{
			Title:   "Rule Trigger Count Distribution",
			Columns: []string{"Trigger Count", "# Transactions", "% of All", "Fraud Count", "Fraud Rate"},
		}
		for _, b := range r.TriggerCounts {
			tc.add(bucketRow(b, []any{b.Value, b.Total, pct(b.PctAll, 1), b.Fraud, pct(b.FraudRate*100, 1)}))
		}
		out = append(out, tc)
	}
	if len(r.Severities) > 0 {
		sv := Table{
			Title:   "Max Rule Severity vs Fraud Rate",
			Columns: []string{"Max Severity", "Description", "# Transactions", "Fraud Count", "Fraud Rate"},
		}
		for _, b := range r.Severities {
			sv.add(bucketRow(b, []any{b.Value, b.Description, b.Total, b.Fraud, pct(b.FraudRate*100, 1)}))
		}
		out = append(out, sv)
	}
	return out
}

func optInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func optFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func bucketRow(b Bucket, cells []any) Row {
	row := Row{Cells: cells, Flagged: b.Flagged}
	if b.Flagged {
		row.Level = LevelHigh
	}
	return row
}

// Warnings names rule columns that could not be analyzed.
func (r *RuleResult) Warnings() []string {
	out := make([]string, 0, len(r.Skipped))
	for _, c := range r.Skipped {
		out = append(out, "rule column "+c+" is not numeric, skipped")
	}
	return out
}
