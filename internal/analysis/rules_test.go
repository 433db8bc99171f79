package analysis

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/fraudeda-cli/internal/catalog"
	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleLiftScenario(t *testing.T) {
	res, err := Rules(fixture(t, tenRows...))
	require.NoError(t, err)
	require.Len(t, res.Rules, 1)

	s := res.Rules[0]
	assert.Equal(t, "rule_large_cash_deposit", s.Name)
	assert.Equal(t, 4, s.TriggerCount)
	assert.Equal(t, 40.0, s.TriggerRate)
	assert.Equal(t, 75.0, s.FraudTriggered)
	require.True(t, s.FraudNotTriggered.Valid)
	assert.Equal(t, 50.0, s.FraudNotTriggered.Value)
	require.True(t, s.Lift.Valid)
	assert.Equal(t, s.FraudTriggered/s.FraudNotTriggered.Value, s.Lift.Value)
	assert.Equal(t, "Very High", s.Strength)

	tbl := res.Tables()[0]
	assert.NotContains(t, tbl.Columns, "Severity", "no rule in the default catalog carries a severity")
	assert.NotContains(t, tbl.Columns, "Weight")
	row := tbl.Rows[0]
	assert.Equal(t, []any{"rule_large_cash_deposit", "Cash deposit ≥ 50,000", 4, "40.00%", "75.0%", "50.0%", "1.50x", "Very High"}, row.Cells)
	assert.Equal(t, LevelCritical, row.Level)
	assert.False(t, row.Undefined)
}

func TestRuleTiesKeepRegistryOrder(t *testing.T) {
	in := fixture(t,
		"label,rule_night_transaction,rule_large_cash_deposit,rule_custom_flag",
		"1,1,0,1",
		"0,1,0,1",
		"1,0,1,0",
		"0,0,1,0",
		"0,0,0,0",
		"0,0,0,0",
	)
	assert.Equal(t, []string{"rule_custom_flag"}, in.Rules.Extra)

	res, err := Rules(in)
	require.NoError(t, err)

	var names []string
	for _, s := range res.Rules {
		names = append(names, s.Name)
		assert.Equal(t, 50.0, s.FraudTriggered)
	}
	assert.Equal(t, []string{"rule_large_cash_deposit", "rule_night_transaction", "rule_custom_flag"}, names)
	assert.Equal(t, 25.0, res.Rules[0].FraudNotTriggered.Value)
	assert.Equal(t, 2.0, res.Rules[0].Lift.Value)
}

func TestRuleLiftSentinel(t *testing.T) {
	in := fixture(t,
		"label,rule_micro_transaction,rule_night_transaction,rule_trigger_count,max_rule_severity",
		"1,1,1,2,3",
		"1,1,1,1,3",
		"0,0,1,0,0",
		"0,0,1,1,0",
	)
	res, err := Rules(in)
	require.NoError(t, err)
	require.Len(t, res.Rules, 2)

	micro := res.Rules[0]
	assert.Equal(t, "rule_micro_transaction", micro.Name)
	assert.Equal(t, 100.0, micro.FraudTriggered)
	assert.True(t, micro.FraudNotTriggered.Valid)
	assert.Equal(t, 0.0, micro.FraudNotTriggered.Value)
	assert.False(t, micro.Lift.Valid)

	night := res.Rules[1]
	assert.False(t, night.FraudNotTriggered.Valid, "never untriggered")
	assert.False(t, night.Lift.Valid)

	tbl := res.Tables()[0]
	assert.Equal(t, "N/A", tbl.Rows[0].Cells[7])
	assert.True(t, tbl.Rows[0].Undefined)
	assert.Equal(t, "N/A", tbl.Rows[1].Cells[6])
}

func TestRuleAggregateBuckets(t *testing.T) {
	in := fixture(t,
		"label,rule_micro_transaction,rule_trigger_count,max_rule_severity",
		"1,1,2,3",
		"1,1,1,3",
		"0,0,0,0",
		"0,0,1,0",
	)
	res, err := Rules(in)
	require.NoError(t, err)

	require.Len(t, res.TriggerCounts, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{res.TriggerCounts[0].Value, res.TriggerCounts[1].Value, res.TriggerCounts[2].Value})
	assert.Equal(t, 0.5, res.TriggerCounts[1].FraudRate)
	assert.False(t, res.TriggerCounts[1].Flagged, "flag is strictly above the threshold")
	assert.True(t, res.TriggerCounts[2].Flagged)

	require.Len(t, res.Severities, 2)
	assert.Equal(t, "No rules triggered", res.Severities[0].Description)
	assert.Equal(t, "High-severity rule(s)", res.Severities[1].Description)
	assert.Equal(t, 2, res.Severities[1].Fraud)
	assert.True(t, res.Severities[1].Flagged)

	tables := res.Tables()
	require.Len(t, tables, 3)
	assert.Equal(t, []any{2, 1, "25.0%", 1, "100.0%"}, tables[1].Rows[2].Cells)
	assert.Equal(t, LevelHigh, tables[2].Rows[1].Level)
}

func TestRulesSkipNonNumericColumns(t *testing.T) {
	in := fixture(t,
		"label,rule_micro_transaction",
		"1,yes",
		"0,no",
	)
	res, err := Rules(in)
	require.NoError(t, err)
	assert.Empty(t, res.Rules)
	assert.Equal(t, []string{"rule_micro_transaction"}, res.Skipped)
}

func TestRuleSeverityAndWeightFromCatalog(t *testing.T) {
	cat, err := catalog.Parse([]byte(`
rule_prefix: "rule_"
baseline_fraud_type: normal
entries:
  - {name: label, type: binary, group: Labels}
  - {name: fraud_type, type: category, group: Labels}
  - {name: rule_a, type: binary, group: Rules, definition: "A", severity: 2, weight: 1.5}
  - {name: rule_b, type: binary, group: Rules, definition: "B"}
fraud_types:
  - {name: mule_ring}
`))
	require.NoError(t, err)
	ds, err := dataset.ReadCSV("w.csv", strings.NewReader(strings.Join([]string{
		"label,fraud_type,rule_a,rule_b",
		"1,mule_ring,1,0",
		"1,mule_ring,1,1",
		"0,normal,0,1",
		"0,normal,0,0",
	}, "\n")), dataset.Options{Delimiter: ','})
	require.NoError(t, err)
	reg, err := catalog.NewRegistry(cat)
	require.NoError(t, err)
	b, err := reg.Bind(cat, ds.Names())
	require.NoError(t, err)
	in := Input{Data: ds, Catalog: cat, Rules: b, Opt: DefaultOptions()}

	res, err := Rules(in)
	require.NoError(t, err)
	tbl := res.Tables()[0]
	assert.Equal(t, []string{"Rule Name", "Description", "Severity", "Weight", "Trigger Count"}, tbl.Columns[:5])
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []any{"rule_a", "A", 2, 1.5, 2}, tbl.Rows[0].Cells[:5])
	assert.Equal(t, []any{"rule_b", "B", nil, nil, 2}, tbl.Rows[1].Cells[:5])

	ft, err := FraudTypes(in)
	require.NoError(t, err)
	tables := ft.Tables()
	require.Len(t, tables, 2)
	assert.Equal(t, []string{"Top Triggered Rules", "Rate", "Weight"}, tables[1].Columns)
	assert.Equal(t, []any{"rule_a", "100.0%", 1.5}, tables[1].Rows[0].Cells)
	assert.Equal(t, []any{"rule_b", "50.0%", nil}, tables[1].Rows[1].Cells)
}
