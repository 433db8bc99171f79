package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/dustin/go-humanize"
)

// Comparison is one metric of a subtype against the baseline.
type Comparison struct {
	Metric string
	Fraud  string
	Normal string
	// Ratio is fraud/baseline; invalid when not reported or the baseline is
	// zero or undefined.
	Ratio Num
	// WithRatio marks metrics that report a ratio when one is defined.
	WithRatio bool
}

// RatioText is "%.2fx", or empty when the ratio is omitted.
func (c Comparison) RatioText() string {
	if !c.WithRatio || !c.Ratio.Valid {
		return ""
	}
	return fmt.Sprintf("%.2fx", c.Ratio.Value)
}

// RuleRate is a rule's mean trigger rate (0..1) within a subtype.
type RuleRate struct {
	Rule   string
	Rate   float64
	Weight *float64
}

// FraudTypeProfile compares one fraud subtype with the baseline.
type FraudTypeProfile struct {
	Type        string
	Description string
	Count       int
	Comparisons []Comparison
	TopRules    []RuleRate
}

// FraudTypeResult holds one profile per configured subtype.
type FraudTypeResult struct {
	Baseline string
	Profiles []FraudTypeProfile
}

// FraudTypes profiles each subtype against the baseline type. The baseline
// itself is never profiled.
func FraudTypes(in Input) (*FraudTypeResult, error) {
	ftCol, ok := in.Data.Column(in.Opt.FraudTypeColumn)
	if !ok {
		return nil, &dataset.MissingColumnError{Dataset: in.Data.Name, Column: in.Opt.FraudTypeColumn, Reason: "not found"}
	}
	base := in.baseline()
	byType := map[string][]int{}
	for i := 0; i < ftCol.Len(); i++ {
		if s, ok := ftCol.String(i); ok {
			byType[s] = append(byType[s], i)
		}
	}
	normal := byType[base]
	res := &FraudTypeResult{Baseline: base}
	for _, ft := range in.fraudTypes() {
		if ft == base {
			continue
		}
		sub := byType[ft]
		p := FraudTypeProfile{
			Type:        ft,
			Description: in.Catalog.FraudTypeDescription(ft),
			Count:       len(sub),
		}
		p.Comparisons = compare(in, sub, normal)
		p.TopRules = topRules(in, sub)
		res.Profiles = append(res.Profiles, p)
	}
	return res, nil
}

func compare(in Input, sub, normal []int) []Comparison {
	ds := in.Data
	out := []Comparison{{
		Metric: "Transaction Count",
		Fraud:  strconv.Itoa(len(sub)),
		Normal: strconv.Itoa(len(normal)),
	}}
	if amt, ok := ds.Column(in.Opt.AmountColumn); ok {
		fm, nm := meanOver(amt, sub), meanOver(amt, normal)
		out = append(out,
			Comparison{Metric: "Average Amount", Fraud: fm.Format("%.2f"), Normal: nm.Format("%.2f"), Ratio: DivNum(fm, nm), WithRatio: true},
			Comparison{Metric: "Median Amount", Fraud: medianOver(amt, sub).Format("%.2f"), Normal: medianOver(amt, normal).Format("%.2f")},
		)
	}
	if night, ok := ds.Column(in.Opt.NightColumn); ok {
		out = append(out, Comparison{
			Metric: "Night Txn Rate",
			Fraud:  scale(meanOver(night, sub), 100).Format("%.1f%%"),
			Normal: scale(meanOver(night, normal), 100).Format("%.1f%%"),
		})
	}
	for _, pm := range in.Opt.ProfileMeans {
		col, ok := ds.Column(pm.Column)
		if !ok {
			continue
		}
		fm, nm := meanOver(col, sub), meanOver(col, normal)
		c := Comparison{Metric: "Avg " + pm.Column, Fraud: fm.Format("%.2f"), Normal: nm.Format("%.2f"), WithRatio: pm.WithRatio}
		if pm.WithRatio {
			c.Ratio = DivNum(fm, nm)
		}
		out = append(out, c)
	}
	for _, f := range []Field{{in.Opt.ChannelColumn, "Top Channel"}, {in.Opt.TxnTypeColumn, "Top Transaction Type"}} {
		col, ok := ds.Column(f.Column)
		if !ok {
			continue
		}
		out = append(out, Comparison{Metric: f.Label, Fraud: modeText(col, sub), Normal: modeText(col, normal)})
	}
	return out
}

func scale(n Num, k float64) Num {
	if n.Valid {
		n.Value *= k
	}
	return n
}

func modeText(col *dataset.Column, rows []int) string {
	if v, ok := mode(col, rows); ok {
		return v
	}
	return "N/A"
}

// topRules ranks rules by mean trigger rate within rows; ties keep registry order.
func topRules(in Input, rows []int) []RuleRate {
	if len(rows) == 0 || in.Opt.TopRules <= 0 {
		return nil
	}
	var rates []RuleRate
	for _, rule := range in.Rules.Rules() {
		col, ok := in.Data.Column(rule.Name)
		if !ok || !col.Kind.Numeric() {
			continue
		}
		m := meanOver(col, rows)
		if !m.Valid {
			continue
		}
		rates = append(rates, RuleRate{Rule: rule.Name, Rate: m.Value, Weight: rule.Weight})
	}
	sort.SliceStable(rates, func(a, b int) bool { return rates[a].Rate > rates[b].Rate })
	if len(rates) > in.Opt.TopRules {
		rates = rates[:in.Opt.TopRules]
	}
	return rates
}

func (r *FraudTypeResult) Tables() []Table {
	var out []Table
	for _, p := range r.Profiles {
		t := Table{
			Title:   fmt.Sprintf("■  %s  (n = %s)", strings.ToUpper(p.Type), humanize.Comma(int64(p.Count))),
			Note:    p.Description,
			Columns: []string{"Metric", "Fraud Value", "Normal Value", "Ratio"},
		}
		for _, c := range p.Comparisons {
			t.add(Row{Cells: []any{c.Metric, c.Fraud, c.Normal, c.RatioText()}, Undefined: c.WithRatio && !c.Ratio.Valid})
		}
		out = append(out, t)
		if len(p.TopRules) == 0 {
			continue
		}
		weighted := false
		for _, rr := range p.TopRules {
			weighted = weighted || rr.Weight != nil
		}
		tr := Table{Title: "Top Triggered Rules – " + p.Type, Columns: []string{"Top Triggered Rules", "Rate"}}
		if weighted {
			tr.Columns = append(tr.Columns, "Weight")
		}
		for _, rr := range p.TopRules {
			cells := []any{rr.Rule, pct(rr.Rate*100, 1)}
			if weighted {
				cells = append(cells, optFloat(rr.Weight))
			}
			tr.add(Row{Cells: cells})
		}
		out = append(out, tr)
	}
	return out
}
