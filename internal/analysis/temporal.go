package analysis

import (
	"time"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
)

var (
	dayNames   = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// TimeBucket is the fraud rate at one hour, weekday or month.
type TimeBucket struct {
	Key   int
	Name  string
	Total int
	Fraud int
	// FraudRate is the mean label (0..1).
	FraudRate float64
	Flagged   bool
}

// TemporalResult holds fraud rate by hour, day of week and month.
type TemporalResult struct {
	Hours  []TimeBucket
	Days   []TimeBucket
	Months []TimeBucket
}

// HourPeriod names the part of day an hour falls in.
func HourPeriod(h int) string {
	switch {
	case h >= 22 || h < 6:
		return "Night (22-05)"
	case h < 9:
		return "Early Morning (6-8)"
	case h < 17:
		return "Business (9-17)"
	default:
		return "Evening (17-21)"
	}
}

// Temporal groups the label by time keys. Each key column falls back to
// being derived from the timestamp when it is absent.
func Temporal(in Input) (*TemporalResult, error) {
	label := in.label()
	res := &TemporalResult{}
	if col, ok := timeKey(in, in.Opt.HourColumn, func(t time.Time) int { return t.Hour() }); ok {
		res.Hours = timeBuckets(col, label, HourPeriod, in.Opt.HourFlagRate)
	}
	if col, ok := timeKey(in, in.Opt.DayOfWeekColumn, func(t time.Time) int { return (int(t.Weekday()) + 6) % 7 }); ok {
		res.Days = timeBuckets(col, label, func(k int) string { return nameAt(dayNames, k) }, 0)
	}
	if col, ok := timeKey(in, in.Opt.MonthColumn, func(t time.Time) int { return int(t.Month()) }); ok {
		res.Months = timeBuckets(col, label, func(k int) string { return nameAt(monthNames, k-1) }, 0)
	}
	if res.Hours == nil && res.Days == nil && res.Months == nil {
		return nil, &dataset.MissingColumnError{Dataset: in.Data.Name, Column: in.Opt.TimestampColumn, Reason: "is not a datetime and no time key columns exist"}
	}
	return res, nil
}

func nameAt(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "?"
	}
	return names[i]
}

func timeKey(in Input, name string, derive func(time.Time) int) (*dataset.Column, bool) {
	if col, ok := in.Data.Column(name); ok && col.Kind.Numeric() {
		return col, true
	}
	ts, ok := in.Data.Column(in.Opt.TimestampColumn)
	if !ok || ts.Kind != dataset.KindTime {
		return nil, false
	}
	vals := make([]float64, ts.Len())
	valid := make([]bool, ts.Len())
	for i := range vals {
		if t, ok := ts.Time(i); ok {
			vals[i] = float64(derive(t))
			valid[i] = true
		}
	}
	return dataset.NewNumeric(name, dataset.KindInt, vals, valid), true
}

// timeBuckets groups by key; a zero flagAt disables flagging.
func timeBuckets(col, label *dataset.Column, name func(int) string, flagAt float64) []TimeBucket {
	var out []TimeBucket
	for _, g := range groupBy(col, label, false) {
		k := int(g.num)
		rate := g.stats.Rate()
		out = append(out, TimeBucket{
			Key:       k,
			Name:      name(k),
			Total:     g.stats.rows,
			Fraud:     g.stats.FraudCount(),
			FraudRate: rate,
			Flagged:   flagAt > 0 && rate > flagAt,
		})
	}
	return out
}

func (r *TemporalResult) Tables() []Table {
	var out []Table
	if len(r.Hours) > 0 {
		t := Table{Title: "Fraud Rate by Hour of Day", Columns: []string{"Hour", "Total Txns", "Fraud Count", "Fraud Rate (%)", "Period"}}
		for _, b := range r.Hours {
			row := Row{Cells: []any{b.Key, b.Total, b.Fraud, pct(b.FraudRate*100, 1), b.Name}, Flagged: b.Flagged}
			if b.Flagged {
				row.Level = LevelHigh
			}
			t.add(row)
		}
		out = append(out, t)
	}
	if len(r.Days) > 0 {
		t := Table{Title: "Fraud Rate by Day of Week", Columns: []string{"Day of Week (0=Mon)", "Day Name", "Total", "Fraud Count", "Fraud Rate (%)"}}
		for _, b := range r.Days {
			t.add(Row{Cells: []any{b.Key, b.Name, b.Total, b.Fraud, pct(b.FraudRate*100, 1)}})
		}
		out = append(out, t)
	}
	if len(r.Months) > 0 {
		t := Table{Title: "Fraud Rate by Month", Columns: []string{"Month", "Month Name", "Total", "Fraud Count", "Fraud Rate (%)"}}
		for _, b := range r.Months {
			t.add(Row{Cells: []any{b.Key, b.Name, b.Total, b.Fraud, pct(b.FraudRate*100, 1)}})
		}
		out = append(out, t)
	}
	return out
}
