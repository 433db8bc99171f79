package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/KaramelBytes/fraudeda-cli/internal/analysis"
)

// SectionID identifies one report section. The numeric order is the
// canonical section order.
type SectionID int

const (
	Overview SectionID = iota
	DataDictionary
	FeatureFormulas
	DescriptiveStats
	MissingValues
	GraphFeatures
	CategoricalDistributions
	RuleFeatures
	TemporalAnalysis
	FraudTypeAnalysis
	TopCorrelations
)

var sectionInfo = [...]struct{ name, title string }{
	Overview:                 {"1_Overview", "AML Dataset – EDA Overview"},
	DataDictionary:           {"2_Data_Dictionary", "Data Dictionary – All Features & Definitions"},
	FeatureFormulas:          {"3_Feature_Formulas", "Feature Formulas, Derivations & AML Intuition"},
	DescriptiveStats:         {"4_Descriptive_Stats", "Descriptive Statistics – All Numeric Features"},
	MissingValues:            {"5_Missing_Values", "Missing Value Analysis"},
	GraphFeatures:            {"6_Graph_Features_EDA", "Graph Features – EDA & Fraud Signal Analysis"},
	CategoricalDistributions: {"7_Categorical_Distributions", "Categorical Feature Distributions & Fraud Rates"},
	RuleFeatures:             {"8_Rule_Features", "Rule-Based Feature Analysis – Trigger Rates & Fraud Correlation"},
	TemporalAnalysis:         {"9_Temporal_Analysis", "Temporal Analysis – Fraud Patterns Over Time"},
	FraudTypeAnalysis:        {"10_Fraud_Type_Analysis", "Fraud Type Deep-Dive Analysis"},
	TopCorrelations:          {"11_Top_Correlations", "Feature Correlations with Fraud Label"},
}

// Sections returns every section in canonical order.
func Sections() []SectionID {
	out := make([]SectionID, len(sectionInfo))
	for i := range out {
		out[i] = SectionID(i)
	}
	return out
}

// Name is the sheet name of the section, e.g. "1_Overview".
func (s SectionID) Name() string {
	if s < 0 || int(s) >= len(sectionInfo) {
		return fmt.Sprintf("section_%d", int(s))
	}
	return sectionInfo[s].name
}

// Title is the human heading of the section.
func (s SectionID) Title() string {
	if s < 0 || int(s) >= len(sectionInfo) {
		return s.Name()
	}
	return sectionInfo[s].title
}

func (s SectionID) String() string { return s.Name() }

// Section is one named group of tables. A failed section carries no tables
// and the reason in Error.
type Section struct {
	Name   string           `json:"name" yaml:"name"`
	Title  string           `json:"title" yaml:"title"`
	Tables []analysis.Table `json:"tables" yaml:"tables"`
	Failed bool             `json:"failed,omitempty" yaml:"failed,omitempty"`
	Error  string           `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the assembled output of one run.
type Report struct {
	RunID       string    `json:"run_id" yaml:"run_id"`
	Dataset     string    `json:"dataset" yaml:"dataset"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Rows        int       `json:"rows" yaml:"rows"`
	Columns     int       `json:"columns" yaml:"columns"`
	Warnings    []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Sections    []Section `json:"sections" yaml:"sections"`
}

// Section returns the named section.
func (r *Report) Section(name string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Failures returns a SectionError per failed section, in order.
func (r *Report) Failures() []*SectionError {
	var out []*SectionError
	for _, s := range r.Sections {
		if s.Failed {
			out = append(out, &SectionError{Section: s.Name, Err: errors.New(s.Error)})
		}
	}
	return out
}

// SectionError is a section builder failure. It never aborts a run; the
// section is replaced with a placeholder.
type SectionError struct {
	Section string
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("section %s failed: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

// Output is what one section builder produced.
type Output struct {
	Tables   []analysis.Table
	Warnings []string
	Err      error
}

// Meta describes the run a report belongs to.
type Meta struct {
	RunID       string
	Dataset     string
	GeneratedAt time.Time
	Rows        int
	Columns     int
	Warnings    []string
}

// Assemble orders section outputs canonically. It never recomputes
// anything: a missing or failed output becomes a placeholder section.
func Assemble(meta Meta, outputs map[SectionID]Output) *Report {
	r := &Report{
		RunID:       meta.RunID,
		Dataset:     meta.Dataset,
		GeneratedAt: meta.GeneratedAt,
		Rows:        meta.Rows,
		Columns:     meta.Columns,
		Warnings:    append([]string(nil), meta.Warnings...),
	}
	for _, id := range Sections() {
		sec := Section{Name: id.Name(), Title: id.Title()}
		out, ok := outputs[id]
		switch {
		case !ok:
			sec.Failed = true
			sec.Error = "section was not produced"
		case out.Err != nil:
			sec.Failed = true
			sec.Error = out.Err.Error()
		default:
			sec.Tables = out.Tables
		}
		r.Warnings = append(r.Warnings, out.Warnings...)
		r.Sections = append(r.Sections, sec)
	}
	return r
}
