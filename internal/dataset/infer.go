package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Options controls how raw tabular input is read and typed.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, picked from the file extension.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// SheetName selects an XLSX sheet by name; SheetIndex (1-based) is used otherwise.
	SheetName  string
	SheetIndex int
	// NullTokens overrides DefaultNullTokens.
	NullTokens []string
}

// DefaultNullTokens are raw cell values read as missing.
var DefaultNullTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None", "<NA>"}

// DefaultOptions returns reasonable defaults for loading a transaction table.
func DefaultOptions() Options {
	return Options{SheetIndex: 1}
}

func (o Options) nullSet() map[string]struct{} {
	toks := o.NullTokens
	if toks == nil {
		toks = DefaultNullTokens
	}
	m := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		m[t] = struct{}{}
	}
	return m
}

// FromStrings types a raw text column. The kind is the narrowest one every
// non-null value parses as: int, float, bool, datetime, then string.
// Columns holding zero-padded digit codes such as "00123" stay strings.
func FromStrings(name string, raw []string, opt Options) *Column {
	nulls := opt.nullSet()
	valid := make([]bool, len(raw))
	vals := make([]string, len(raw))
	present := 0
	for i, s := range raw {
		s = strings.TrimSpace(s)
		vals[i] = s
		if _, isNull := nulls[s]; !isNull {
			valid[i] = true
			present++
		}
	}
	if present == 0 {
		// all-null: keep it numeric so it shows up in numeric summaries
		return NewNumeric(name, KindFloat, make([]float64, len(raw)), valid)
	}
	if zeroPadded(vals, valid) {
		return NewStrings(name, vals, valid)
	}
	if nums, ok := parseAll(vals, valid, parseInt); ok {
		return NewNumeric(name, KindInt, nums, valid)
	}
	if nums, ok := parseAll(vals, valid, func(s string) (float64, bool) { return parseNumeric(s, opt) }); ok {
		return NewNumeric(name, KindFloat, nums, valid)
	}
	if nums, ok := parseAll(vals, valid, parseBool); ok {
		return NewNumeric(name, KindBool, nums, valid)
	}
	if ts, ok := parseAllTimes(vals, valid); ok {
		return NewTimes(name, ts, valid)
	}
	return NewStrings(name, vals, valid)
}

// zeroPadded reports whether any value is a digit string of three or more
// characters with a leading zero. Two-digit padding ("01" hours and months)
// does not count.
func zeroPadded(vals []string, valid []bool) bool {
	for i, s := range vals {
		if !valid[i] || len(s) < 3 || s[0] != '0' {
			continue
		}
		digits := true
		for j := 1; j < len(s); j++ {
			if s[j] < '0' || s[j] > '9' {
				digits = false
				break
			}
		}
		if digits {
			return true
		}
	}
	return false
}

func parseAll(vals []string, valid []bool, fn func(string) (float64, bool)) ([]float64, bool) {
	out := make([]float64, len(vals))
	for i, s := range vals {
		if !valid[i] {
			continue
		}
		f, ok := fn(s)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func parseAllTimes(vals []string, valid []bool) ([]time.Time, bool) {
	out := make([]time.Time, len(vals))
	for i, s := range vals {
		if !valid[i] {
			continue
		}
		t, ok := parseTimeMaybe(s)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

func parseInt(s string) (float64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}

func parseBool(s string) (float64, bool) {
	switch strings.ToLower(s) {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02", "2006/01/02",
	"02/01/2006", "01/02/2006", "1/2/2006 15:04", "1/2/2006 15:04:05",
}

func parseTimeMaybe(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		dec, thou = detectSeparators(raw, thou)
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// detectSeparators guesses the decimal separator from the last ',' or '.'
// in s. A thousands separator set by the caller is kept and never chosen
// as the decimal separator.
func detectSeparators(s string, thou rune) (rune, rune) {
	switch thou {
	case ',':
		return '.', thou
	case '.':
		return ',', thou
	}
	cpos := strings.LastIndex(s, ",")
	dpos := strings.LastIndex(s, ".")
	var dec, guess rune
	switch {
	case cpos >= 0 && dpos >= 0 && cpos > dpos:
		dec, guess = ',', '.'
	case cpos >= 0 && dpos >= 0:
		dec, guess = '.', ','
	case cpos >= 0:
		dec = ','
	default:
		dec = '.'
	}
	if thou == 0 {
		thou = guess
	}
	return dec, thou
}
