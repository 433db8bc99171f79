package analysis

import (
	"errors"
	"testing"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var typedRows = []string{
	"label,fraud_type,amount,is_night,channel,transaction_type,devices_per_account,rule_night_transaction,rule_large_cash_deposit",
	"0,normal,0,0,web,upi,1,0,0",
	"0,normal,0,0,web,upi,1,0,0",
	"1,mule_ring,100,1,web,imps,2,1,1",
	"1,mule_ring,200,0,atm,imps,4,1,0",
}

func profile(t *testing.T, res *FraudTypeResult, name string) FraudTypeProfile {
	t.Helper()
	for _, p := range res.Profiles {
		if p.Type == name {
			return p
		}
	}
	t.Fatalf("no profile for %q", name)
	return FraudTypeProfile{}
}

func TestFraudTypeComparisonAgainstBaseline(t *testing.T) {
	res, err := FraudTypes(fixture(t, typedRows...))
	require.NoError(t, err)
	assert.Equal(t, "normal", res.Baseline)
	assert.Len(t, res.Profiles, 5, "every configured subtype is profiled")

	p := profile(t, res, "mule_ring")
	assert.Equal(t, 2, p.Count)
	assert.NotEmpty(t, p.Description)

	var metrics []string
	for _, c := range p.Comparisons {
		metrics = append(metrics, c.Metric)
	}
	assert.Equal(t, []string{
		"Transaction Count", "Average Amount", "Median Amount", "Night Txn Rate",
		"Avg devices_per_account", "Top Channel", "Top Transaction Type",
	}, metrics)

	byMetric := map[string]Comparison{}
	for _, c := range p.Comparisons {
		byMetric[c.Metric] = c
	}
	avg := byMetric["Average Amount"]
	assert.Equal(t, "150.00", avg.Fraud)
	assert.Equal(t, "0.00", avg.Normal)
	assert.Equal(t, "", avg.RatioText(), "zero baseline omits the ratio")

	assert.Equal(t, "50.0%", byMetric["Night Txn Rate"].Fraud)
	assert.Equal(t, "0.0%", byMetric["Night Txn Rate"].Normal)
	assert.Equal(t, "3.00x", byMetric["Avg devices_per_account"].RatioText())
	assert.Equal(t, "atm", byMetric["Top Channel"].Fraud, "mode ties go to the smallest value")
	assert.Equal(t, "web", byMetric["Top Channel"].Normal)
	assert.Equal(t, "imps", byMetric["Top Transaction Type"].Fraud)
	assert.Equal(t, "", byMetric["Median Amount"].RatioText())

	assert.Equal(t, []RuleRate{
		{Rule: "rule_night_transaction", Rate: 1},
		{Rule: "rule_large_cash_deposit", Rate: 0.5},
	}, p.TopRules)
}

func TestFraudTypeEmptySubtype(t *testing.T) {
	res, err := FraudTypes(fixture(t, typedRows...))
	require.NoError(t, err)

	p := profile(t, res, "layering")
	assert.Equal(t, 0, p.Count)
	assert.Nil(t, p.TopRules)
	for _, c := range p.Comparisons {
		if c.Metric == "Average Amount" {
			assert.Equal(t, "N/A", c.Fraud)
			assert.Equal(t, "", c.RatioText())
		}
	}
}

func TestFraudTypeTopRulesTieOrder(t *testing.T) {
	in := fixture(t,
		"label,fraud_type,rule_night_transaction,rule_large_cash_deposit,rule_micro_transaction",
		"1,smurfing,1,1,0",
		"1,smurfing,0,0,1",
		"0,normal,0,0,0",
	)
	in.Opt.TopRules = 2
	res, err := FraudTypes(in)
	require.NoError(t, err)

	p := profile(t, res, "smurfing")
	require.Len(t, p.TopRules, 2)
	assert.Equal(t, "rule_large_cash_deposit", p.TopRules[0].Rule)
	assert.Equal(t, "rule_micro_transaction", p.TopRules[1].Rule)
}

func TestFraudTypeTables(t *testing.T) {
	res, err := FraudTypes(fixture(t, typedRows...))
	require.NoError(t, err)

	tables := res.Tables()
	require.NotEmpty(t, tables)
	assert.Equal(t, "■  MULE_RING  (n = 2)", tables[0].Title)
	assert.Equal(t, []any{"Average Amount", "150.00", "0.00", ""}, tables[0].Rows[1].Cells)
	assert.True(t, tables[0].Rows[1].Undefined)
	assert.Equal(t, "Top Triggered Rules – mule_ring", tables[1].Title)
	assert.Equal(t, []any{"rule_night_transaction", "100.0%"}, tables[1].Rows[0].Cells)
}

func TestFraudTypeRequiresColumn(t *testing.T) {
	_, err := FraudTypes(fixture(t, "label,amount", "1,10"))
	var mc *dataset.MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "fraud_type", mc.Column)
}

func TestFraudTypeOptionsOverride(t *testing.T) {
	in := fixture(t, typedRows...)
	in.Opt.FraudTypes = []string{"mule_ring", "normal"}
	res, err := FraudTypes(in)
	require.NoError(t, err)
	require.Len(t, res.Profiles, 1, "baseline is never profiled")
	assert.Equal(t, "mule_ring", res.Profiles[0].Type)
}
