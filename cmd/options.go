package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/fraudeda-cli/internal/analysis"
	"github.com/KaramelBytes/fraudeda-cli/internal/catalog"
	cfgpkg "github.com/KaramelBytes/fraudeda-cli/internal/config"
	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/KaramelBytes/fraudeda-cli/internal/report"
)

// loadFlags are the dataset reading flags shared by report and report-batch.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
}

func (lf loadFlags) options(c *cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.MaxRows = lf.maxRows
	if opt.MaxRows == 0 && c != nil {
		opt.MaxRows = c.MaxRows
	}
	delim := lf.delimiter
	if delim == "" && c != nil {
		delim = c.Delimiter
	}
	if delim != "" {
		switch delim {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		case "|", "pipe":
			opt.Delimiter = '|'
		default:
			return opt, fmt.Errorf("unsupported --delimiter: %s", delim)
		}
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(lf.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", lf.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(lf.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", lf.thousands)
	}
	opt.SheetName = lf.sheetName
	if lf.sheetIndex > 0 {
		opt.SheetIndex = lf.sheetIndex
	}
	return opt, nil
}

// loadCatalog reads the --catalog path, the configured path, or the
// embedded default, in that order.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" && cfg != nil {
		path = cfg.CatalogPath
	}
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// reportOptions maps configuration onto a report run.
func reportOptions(c *cfgpkg.Global, parallel bool) report.Options {
	opt := report.DefaultOptions()
	opt.Parallel = parallel
	if c == nil {
		return opt
	}
	opt.Parallel = parallel || c.Parallel
	a := &opt.Analysis
	if c.LabelColumn != "" {
		a.LabelColumn = c.LabelColumn
	}
	if c.FraudTypeColumn != "" {
		a.FraudTypeColumn = c.FraudTypeColumn
	}
	if c.BaselineFraudType != "" {
		a.Baseline = c.BaselineFraudType
	}
	if len(c.FraudTypes) > 0 {
		a.FraudTypes = c.FraudTypes
	}
	if c.InternalColumns != nil {
		a.InternalColumns = c.InternalColumns
	}
	if c.CategoricalFlagRate > 0 {
		a.CategoricalFlagRate = c.CategoricalFlagRate
	}
	if c.TopRules > 0 {
		a.TopRules = c.TopRules
	}
	return opt
}

// resolveFormat picks the output format: explicit flag, then the output
// path's extension, then configuration.
func resolveFormat(flag, output string) (report.Format, error) {
	if flag != "" {
		return report.ParseFormat(flag)
	}
	if output != "" {
		if f, ok := report.FormatForPath(output); ok {
			return f, nil
		}
	}
	if cfg != nil && cfg.OutputFormat != "" {
		return report.ParseFormat(cfg.OutputFormat)
	}
	return report.FormatXLSX, nil
}

func analysisOverrides(a *analysis.Options, baseline string, fraudTypes []string) {
	if baseline != "" {
		a.Baseline = baseline
	}
	if len(fraudTypes) > 0 {
		a.FraudTypes = fraudTypes
	}
}
