package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const txnCSV = `transaction_id,timestamp,amount,channel,label,fraud_type,rule_night_transaction,avg_time_gap_in_out
T1,2024-01-01 23:10:00,"1,250.50",web,1,ATO,1,
T2,2024-01-02 09:00:00,300,mobile,0,normal,0,12.5
T3,2024-01-02 10:30:00,42.1,web,0,normal,0,NaN
`

func TestReadCSV_InfersKinds(t *testing.T) {
	ds, err := ReadCSV("txns", strings.NewReader(txnCSV), DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, ds.Rows())
	assert.Equal(t, []string{"transaction_id", "timestamp", "amount", "channel", "label", "fraud_type", "rule_night_transaction", "avg_time_gap_in_out"}, ds.Names())

	kinds := map[string]Kind{
		"transaction_id":         KindString,
		"timestamp":              KindTime,
		"amount":                 KindFloat,
		"channel":                KindString,
		"label":                  KindInt,
		"rule_night_transaction": KindInt,
		"avg_time_gap_in_out":    KindFloat,
	}
	for name, want := range kinds {
		c, ok := ds.Column(name)
		require.True(t, ok, name)
		assert.Equal(t, want, c.Kind, name)
	}

	amt, _ := ds.Column("amount")
	v, ok := amt.Float(0)
	require.True(t, ok)
	assert.InDelta(t, 1250.5, v, 1e-9)

	gap, _ := ds.Column("avg_time_gap_in_out")
	assert.Equal(t, 2, gap.NullCount())
	assert.True(t, gap.IsNull(0))
	assert.Equal(t, []float64{12.5}, gap.Floats())

	ts, _ := ds.Column("timestamp")
	s, ok := ts.String(0)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01 23:10:00", s)
}

func TestReadCSV_ZeroPaddedCodesStayText(t *testing.T) {
	in := "account_code,hour,amount\n00123,01,0\n4567,23,0.50\n,07,10\n"
	ds, err := ReadCSV("codes", strings.NewReader(in), DefaultOptions())
	require.NoError(t, err)

	code, _ := ds.Column("account_code")
	assert.Equal(t, KindString, code.Kind)
	s, ok := code.String(0)
	require.True(t, ok)
	assert.Equal(t, "00123", s)
	assert.Equal(t, 1, code.NullCount())

	hour, _ := ds.Column("hour")
	assert.Equal(t, KindInt, hour.Kind)
	amt, _ := ds.Column("amount")
	assert.Equal(t, KindFloat, amt.Kind)
}

func TestReadCSV_AllNullColumnIsNumeric(t *testing.T) {
	ds, err := ReadCSV("n", strings.NewReader("a,b\n1,\n2,\n"), DefaultOptions())
	require.NoError(t, err)
	b, _ := ds.Column("b")
	assert.True(t, b.Kind.Numeric())
	assert.Equal(t, 2, b.NullCount())
	assert.Empty(t, b.Floats())
}

func TestReadCSV_MaxRowsAndEmpty(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 2
	ds, err := ReadCSV("txns", strings.NewReader(txnCSV), opt)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Rows())

	empty, err := ReadCSV("empty", strings.NewReader(""), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Rows())
	assert.Empty(t, empty.Columns())
}

func TestLoadFile_TSVAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "t.tsv")
	require.NoError(t, os.WriteFile(p, []byte("label\tfraud_type\n0\tnormal\n1\tsmurfing\n"), 0o644))
	ds, err := LoadFile(p, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "t", ds.Name)
	assert.Equal(t, 2, ds.Rows())

	bad := filepath.Join(dir, "t.parquet")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o644))
	_, err = LoadFile(bad, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestRequire_MissingColumnError(t *testing.T) {
	ds, err := ReadCSV("txns", strings.NewReader("fraud_type,channel\nnormal,web\n"), DefaultOptions())
	require.NoError(t, err)

	err = ds.Require("fraud_type", "label")
	var mce *MissingColumnError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, "label", mce.Column)
	assert.Contains(t, err.Error(), `"label"`)

	err = ds.RequireNumeric("channel")
	require.True(t, errors.As(err, &mce))
	assert.Contains(t, mce.Reason, "not numeric")
}

func TestNew_RejectsRaggedColumns(t *testing.T) {
	_, err := New("x",
		NewNumeric("a", KindInt, []float64{1, 2}, nil),
		NewStrings("b", []string{"x"}, nil),
	)
	assert.Error(t, err)

	_, err = New("x",
		NewNumeric("a", KindInt, []float64{1}, nil),
		NewNumeric("a", KindInt, []float64{1}, nil),
	)
	assert.Error(t, err)
}

func TestParseNumeric_Locales(t *testing.T) {
	tests := []struct {
		in   string
		opt  Options
		want float64
		ok   bool
	}{
		{"1.000,5", Options{}, 1000.5, true},
		{"1,000.5", Options{}, 1000.5, true},
		{"12%", Options{}, 12, true},
		{"1 234", Options{DecimalSeparator: '.', ThousandsSeparator: ' '}, 1234, true},
		{"1,234", Options{ThousandsSeparator: ','}, 1234, true},
		{"1,234.5", Options{ThousandsSeparator: ','}, 1234.5, true},
		{"1.234", Options{ThousandsSeparator: '.'}, 1234, true},
		{"1.234,5", Options{ThousandsSeparator: '.'}, 1234.5, true},
		{"1,5", Options{}, 1.5, true},
		{"C123", Options{}, 0, false},
		{"2024-01-01", Options{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := parseNumeric(tt.in, tt.opt)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}
