package analysis

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHourPeriod(t *testing.T) {
	cases := map[int]string{
		0: "Night (22-05)", 5: "Night (22-05)", 6: "Early Morning (6-8)", 8: "Early Morning (6-8)",
		9: "Business (9-17)", 16: "Business (9-17)", 17: "Evening (17-21)", 21: "Evening (17-21)",
		22: "Night (22-05)", 23: "Night (22-05)",
	}
	for h, want := range cases {
		assert.Equal(t, want, HourPeriod(h), "hour %d", h)
	}
}

func TestTemporalDerivedFromTimestamp(t *testing.T) {
	in := fixture(t,
		"label,timestamp",
		"1,2024-01-01 23:10:00",
		"0,2024-01-01 10:00:00",
		"1,2024-02-03 23:30:00",
		"0,2024-02-03 07:00:00",
	)
	res, err := Temporal(in)
	require.NoError(t, err)

	require.Len(t, res.Hours, 3)
	assert.Equal(t, TimeBucket{Key: 7, Name: "Early Morning (6-8)", Total: 1}, res.Hours[0])
	assert.Equal(t, 23, res.Hours[2].Key)
	assert.Equal(t, 1.0, res.Hours[2].FraudRate)
	assert.True(t, res.Hours[2].Flagged)

	require.Len(t, res.Days, 2)
	assert.Equal(t, "Monday", res.Days[0].Name)
	assert.Equal(t, 5, res.Days[1].Key)
	assert.Equal(t, "Saturday", res.Days[1].Name)
	assert.False(t, res.Days[1].Flagged)

	require.Len(t, res.Months, 2)
	assert.Equal(t, "Jan", res.Months[0].Name)
	assert.Equal(t, "Feb", res.Months[1].Name)

	tables := res.Tables()
	require.Len(t, tables, 3)
	assert.Equal(t, []any{23, 2, 2, "100.0%", "Night (22-05)"}, tables[0].Rows[2].Cells)
	assert.Equal(t, []any{0, "Monday", 2, 1, "50.0%"}, tables[1].Rows[0].Cells)
}

func TestTemporalPrefersKeyColumns(t *testing.T) {
	in := fixture(t,
		"label,hour,timestamp",
		"1,3,2024-01-01 23:10:00",
		"0,3,2024-01-01 10:00:00",
	)
	res, err := Temporal(in)
	require.NoError(t, err)
	require.Len(t, res.Hours, 1)
	assert.Equal(t, 3, res.Hours[0].Key)
	assert.Equal(t, 0.5, res.Hours[0].FraudRate)
	assert.True(t, res.Hours[0].Flagged)
}

func TestTemporalWithoutTimeData(t *testing.T) {
	_, err := Temporal(fixture(t, "label,timestamp", "1,yesterday", "0,today"))
	var mc *dataset.MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "timestamp", mc.Column)
}

func TestGraphComparison(t *testing.T) {
	in := fixture(t,
		"label,sender_out_degree_30d,devices_per_account,accounts_per_device,channel",
		"0,0,1,,web",
		"0,0,1,,web",
		"1,3,4,,web",
		"1,5,2,,web",
	)
	res, err := Graph(in)
	require.NoError(t, err)

	require.Len(t, res.Stats, 3)
	assert.Equal(t, 0, res.Stats[2].Count, "all-null column is still described")
	assert.Len(t, res.Absent, len(in.Opt.GraphColumns)-3)
	assert.Contains(t, res.Absent, "sender_total_outflow_30d")

	require.Len(t, res.Comparisons, 2)
	out := res.Comparisons[0]
	assert.Equal(t, "sender_out_degree_30d", out.Feature)
	assert.Equal(t, 4.0, out.Fraud.Value)
	assert.False(t, out.Ratio.Valid)
	assert.Equal(t, "↑ fraud higher", out.Direction)
	assert.Equal(t, LevelNone, out.Level())

	dev := res.Comparisons[1]
	assert.Equal(t, 3.0, dev.Ratio.Value)
	assert.Equal(t, LevelMedium, dev.Level())

	tables := res.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, "100.0%", tables[0].Rows[2].Cells[11])
	assert.Equal(t, "N/A", tables[1].Rows[0].Cells[3])
	assert.True(t, tables[1].Rows[0].Undefined)
	assert.Equal(t, "3.00x", tables[1].Rows[1].Cells[3])
}
