package analysis

import (
	"github.com/KaramelBytes/fraudeda-cli/internal/catalog"
	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
)

// Field pairs a dataset column with its display label.
type Field struct {
	Column string
	Label  string
}

// Options names the columns and thresholds the analyzers work with.
type Options struct {
	LabelColumn     string
	FraudTypeColumn string
	ChannelColumn   string
	TimestampColumn string
	AmountColumn    string
	NightColumn     string
	TxnTypeColumn   string

	// UniqueColumns are counted for distinct values in the overview.
	UniqueColumns []Field
	// InternalColumns are join artifacts left out of numeric summaries.
	InternalColumns []string
	// CategoricalColumns are profiled value by value.
	CategoricalColumns []Field
	// GraphColumns are the graph-derived features.
	GraphColumns []string

	// FraudTypes overrides the catalog subtype list when non-empty.
	FraudTypes []string
	// Baseline overrides the catalog's "no fraud" type when set.
	Baseline string
	// ProfileMeans are averaged per subtype; WithRatio adds a ratio to baseline.
	ProfileMeans []ProfileMean
	TopRules     int

	TriggerCountColumn string
	MaxSeverityColumn  string
	HourColumn         string
	DayOfWeekColumn    string
	MonthColumn        string

	// Flag thresholds on fraud rate (0..1).
	CategoricalFlagRate  float64
	TriggerCountFlagRate float64
	SeverityFlagRate     float64
	HourFlagRate         float64
}

// ProfileMean is one averaged column in the fraud-type comparison.
type ProfileMean struct {
	Column    string
	WithRatio bool
}

// DefaultOptions returns the column layout of the transaction feature set.
func DefaultOptions() Options {
	return Options{
		LabelColumn:     "label",
		FraudTypeColumn: "fraud_type",
		ChannelColumn:   "channel",
		TimestampColumn: "timestamp",
		AmountColumn:    "amount",
		NightColumn:     "is_night",
		TxnTypeColumn:   "transaction_type",
		UniqueColumns: []Field{
			{"customer_id", "Unique Customers"},
			{"sender_account_id", "Unique Sender Accounts"},
			{"device_id", "Unique Devices"},
			{"transaction_type", "Unique Transaction Types"},
		},
		InternalColumns: []string{"account_id_x", "account_id_y"},
		CategoricalColumns: []Field{
			{"channel", "Channel"},
			{"transaction_type", "Transaction Type"},
			{"kyc_level", "KYC Level"},
			{"country_risk", "Country Risk"},
			{"income_bracket", "Income Bracket"},
			{"customer_risk_rating", "Customer Risk Rating"},
			{"occupation", "Occupation"},
			{"account_type", "Account Type"},
			{"os_type", "OS Type"},
			{"beneficiary_type", "Beneficiary Type"},
			{"beneficiary_country_risk", "Beneficiary Country Risk"},
			{"debit_credit", "Debit / Credit"},
		},
		GraphColumns: []string{
			"sender_out_degree_30d", "sender_total_outflow_30d", "sender_unique_counterparties_30d",
			"sender_repeat_counterparty_ratio", "sender_in_degree_30d", "sender_total_inflow_30d",
			"receiver_in_degree_30d", "receiver_total_inflow_30d", "receiver_unique_senders_30d",
			"receiver_account_outflow_30d", "inflow_outflow_volume_balance_ratio_24h",
			"inflow_outflow_volume_balance_ratio_7d", "outflow_to_inflow_ratio_7d",
			"devices_per_account", "accounts_per_device", "device_shared_high_risk_ratio",
			"shared_device_fraud_count", "avg_time_gap_in_out",
		},
		ProfileMeans: []ProfileMean{
			{"devices_per_account", true},
			{"accounts_per_device", true},
			{"sender_out_degree_30d", false},
			{"shared_device_fraud_count", false},
		},
		TopRules:             5,
		TriggerCountColumn:   "rule_trigger_count",
		MaxSeverityColumn:    "max_rule_severity",
		HourColumn:           "hour",
		DayOfWeekColumn:      "day_of_week",
		MonthColumn:          "month",
		CategoricalFlagRate:  0.4,
		TriggerCountFlagRate: 0.5,
		SeverityFlagRate:     0.3,
		HourFlagRate:         0.3,
	}
}

func (o Options) isInternal(name string) bool {
	for _, c := range o.InternalColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Input is what every section builder reads. Nothing in it is mutated.
type Input struct {
	Data    *dataset.Dataset
	Catalog *catalog.Catalog
	Rules   *catalog.Binding
	Opt     Options
}

// label returns the label column; callers validate it up front.
func (in Input) label() *dataset.Column {
	c, _ := in.Data.Column(in.Opt.LabelColumn)
	return c
}

func (in Input) fraudTypes() []string {
	if len(in.Opt.FraudTypes) > 0 {
		return in.Opt.FraudTypes
	}
	return in.Catalog.FraudTypeNames()
}

func (in Input) baseline() string {
	if in.Opt.Baseline != "" {
		return in.Opt.Baseline
	}
	return in.Catalog.Baseline
}
