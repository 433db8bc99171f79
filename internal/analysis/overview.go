package analysis

import (
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/dustin/go-humanize"
)

// Metric is one headline key/value pair.
type Metric struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// FraudTypeShare is one fraud_type value's share of the data.
type FraudTypeShare struct {
	Type   string  `json:"type" yaml:"type"`
	Count  int     `json:"count" yaml:"count"`
	PctAll float64 `json:"pct_all" yaml:"pct_all"`
	// FraudRate is the mean label within the type (0..1, 4 dp).
	FraudRate float64 `json:"fraud_rate" yaml:"fraud_rate"`
}

// ChannelShare is one channel's volume and fraud rate.
type ChannelShare struct {
	Channel string `json:"channel" yaml:"channel"`
	Total   int    `json:"total" yaml:"total"`
	Fraud   int    `json:"fraud" yaml:"fraud"`
	// FraudRatePct is in percent, 2 dp.
	FraudRatePct float64 `json:"fraud_rate_pct" yaml:"fraud_rate_pct"`
}

// OverviewResult holds the headline metrics and the fraud_type and channel splits.
type OverviewResult struct {
	Metrics    []Metric
	FraudTypes []FraudTypeShare
	Channels   []ChannelShare
	FraudRate  Num
}

// Overview computes dataset-level headline metrics.
func Overview(in Input) (*OverviewResult, error) {
	ds := in.Data
	label := in.label()
	res := &OverviewResult{}
	add := func(name, value string) { res.Metrics = append(res.Metrics, Metric{name, value}) }

	add("Total Transactions", humanize.Comma(int64(ds.Rows())))
	add("Total Columns / Features", humanize.Comma(int64(len(ds.Columns()))))
	if c, ok := ds.Column(in.Opt.TimestampColumn); ok {
		if lo, hi, ok := timeRange(c); ok {
			add("Date Range Start", lo)
			add("Date Range End", hi)
		}
	}

	var all labelStats
	for i := 0; i < ds.Rows(); i++ {
		all.add(label, i)
	}
	res.FraudRate = Div(all.fraud, float64(all.labeled))
	add("Fraud Transactions (label=1)", humanize.Comma(int64(all.FraudCount())))
	add("Legitimate (label=0)", humanize.Comma(int64(all.zeros)))
	add("Overall Fraud Rate", pct(res.FraudRate.Or(0)*100, 2))

	for _, f := range in.Opt.UniqueColumns {
		if c, ok := ds.Column(f.Column); ok {
			add(f.Label, humanize.Comma(int64(distinct(c))))
		}
	}
	if c, ok := ds.Column(in.Opt.ChannelColumn); ok {
		add("Channels", strings.Join(firstSeen(c), ", "))
	}
	withNulls, missing := 0, 0
	for _, c := range ds.Columns() {
		if n := c.NullCount(); n > 0 {
			withNulls++
			missing += n
		}
	}
	add("Columns with Nulls", humanize.Comma(int64(withNulls)))
	add("Total Missing Cells", humanize.Comma(int64(missing)))

	if ft, ok := ds.Column(in.Opt.FraudTypeColumn); ok {
		groups := groupBy(ft, label, false)
		sort.SliceStable(groups, func(a, b int) bool { return groups[a].stats.rows > groups[b].stats.rows })
		for _, g := range groups {
			res.FraudTypes = append(res.FraudTypes, FraudTypeShare{
				Type:      g.key,
				Count:     g.stats.rows,
				PctAll:    Round(Div(float64(g.stats.rows), float64(ds.Rows())).Or(0)*100, 2),
				FraudRate: Round(g.stats.Rate(), 4),
			})
		}
	}
	if ch, ok := ds.Column(in.Opt.ChannelColumn); ok {
		for _, g := range groupBy(ch, label, false) {
			res.Channels = append(res.Channels, ChannelShare{
				Channel:      g.key,
				Total:        g.stats.rows,
				Fraud:        g.stats.FraudCount(),
				FraudRatePct: Round(g.stats.Rate()*100, 2),
			})
		}
	}
	return res, nil
}

func timeRange(c *dataset.Column) (string, string, bool) {
	var lo, hi time.Time
	var slo, shi string
	found := false
	for i := 0; i < c.Len(); i++ {
		if c.Kind == dataset.KindTime {
			t, ok := c.Time(i)
			if !ok {
				continue
			}
			if !found || t.Before(lo) {
				lo = t
			}
			if !found || t.After(hi) {
				hi = t
			}
			found = true
			continue
		}
		s, ok := c.String(i)
		if !ok {
			continue
		}
		if !found || s < slo {
			slo = s
		}
		if !found || s > shi {
			shi = s
		}
		found = true
	}
	if !found {
		return "", "", false
	}
	if c.Kind == dataset.KindTime {
		return lo.Format(dataset.TimeLayout), hi.Format(dataset.TimeLayout), true
	}
	return truncate(slo, 19), truncate(shi, 19), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Tables renders the overview as three tables.
func (r *OverviewResult) Tables() []Table {
	kv := Table{Title: "Dataset Overview", Columns: []string{"Metric", "Value"}}
	for _, m := range r.Metrics {
		kv.add(Row{Cells: []any{m.Name, m.Value}})
	}
	ft := Table{Title: "Fraud Type Distribution", Columns: []string{"Fraud Type", "Count", "% of All Txns", "Fraud Rate (of type)"}}
	for _, s := range r.FraudTypes {
		ft.add(Row{
			Cells:   []any{s.Type, s.Count, pct2(s.PctAll), pct(s.FraudRate*100, 1)},
			Flagged: s.FraudRate > 0,
		})
	}
	ch := Table{Title: "Channel Distribution", Columns: []string{"Channel", "Total", "Fraud Count", "Fraud Rate (%)"}}
	for _, s := range r.Channels {
		ch.add(Row{Cells: []any{s.Channel, s.Total, s.Fraud, pct2(s.FraudRatePct)}})
	}
	out := []Table{kv}
	if len(r.FraudTypes) > 0 {
		out = append(out, ft)
	}
	if len(r.Channels) > 0 {
		out = append(out, ch)
	}
	return out
}
