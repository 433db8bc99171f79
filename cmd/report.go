package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/KaramelBytes/fraudeda-cli/internal/report"
	"github.com/KaramelBytes/fraudeda-cli/internal/utils"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	repOutputPath string
	repFormat     string
	repCatalog    string
	repParallel   bool
	repQuiet      bool
	repBaseline   string
	repFraudTypes []string
	repLoad       loadFlags

	// SQL source
	repDriver string
	repDSN    string
	repQuery  string
	repTable  string
)

var reportCmd = &cobra.Command{
	Use:   "report [dataset]",
	Short: "Build the EDA report for one CSV/TSV/XLSX file or SQL source",
	Example: `  fraudeda report transactions.csv
  fraudeda report features.xlsx --sheet-name features -o out/EDA_features.xlsx
  fraudeda report --driver sqlite --dsn features.db --table transactions -f md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ds, source, err := loadReportDataset(ctx, args)
		if err != nil {
			return err
		}
		format, err := resolveFormat(repFormat, repOutputPath)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(repCatalog)
		if err != nil {
			return err
		}

		opt := reportOptions(cfg, repParallel)
		analysisOverrides(&opt.Analysis, repBaseline, repFraudTypes)
		var bar *progressbar.ProgressBar
		if !repQuiet && term.IsTerminal(int(os.Stderr.Fd())) {
			bar = newSectionBar(os.Stderr, "Building "+ds.Name)
			opt.OnSection = func(string, bool) { _ = bar.Add(1) }
		}

		rep, err := report.Run(ctx, ds, cat, opt)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return err
		}
		slog.Debug("report built", "dataset", rep.Dataset, "run_id", rep.RunID, "failed_sections", len(rep.Failures()))

		out := repOutputPath
		if out == "" && format.Binary() {
			out = utils.ReportPath(outputDir(), source, format.Ext())
		}
		if out == "" {
			return rep.Write(cmd.OutOrStdout(), format)
		}
		if err := rep.Save(out, format); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s report to %s\n", format, out)
		for _, f := range rep.Failures() {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %v\n", f)
		}
		return nil
	},
}

// loadReportDataset reads the positional file or the SQL source. The
// returned source names the default output file.
func loadReportDataset(ctx context.Context, args []string) (*dataset.Dataset, string, error) {
	opt, err := repLoad.options(cfg)
	if err != nil {
		return nil, "", err
	}
	src := dataset.SQLSource{Driver: repDriver, DSN: repDSN, Query: repQuery, Table: repTable}
	if cfg != nil {
		if src.Driver == "" {
			src.Driver = cfg.SQLDriver
		}
		if src.DSN == "" {
			src.DSN = cfg.SQLDSN
		}
		if src.Query == "" && src.Table == "" {
			src.Query, src.Table = cfg.SQLQuery, cfg.SQLTable
		}
	}
	switch {
	case len(args) == 1:
		ds, err := dataset.LoadFile(args[0], opt)
		if err != nil {
			return nil, "", err
		}
		return ds, args[0], nil
	case src.Driver != "":
		ds, err := dataset.LoadSQL(ctx, src, opt)
		if err != nil {
			return nil, "", err
		}
		return ds, ds.Name, nil
	}
	return nil, "", errors.New("need a dataset file or --driver/--dsn for a SQL source")
}

func outputDir() string {
	if cfg != nil && cfg.OutputDir != "" {
		return cfg.OutputDir
	}
	return "."
}

func newSectionBar(w io.Writer, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(len(report.Sections()),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func addLoadFlags(c *cobra.Command, lf *loadFlags) {
	c.Flags().StringVar(&lf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | 'pipe' (by extension if omitted)")
	c.Flags().StringVar(&lf.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	c.Flags().StringVar(&lf.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	c.Flags().IntVar(&lf.maxRows, "max-rows", 0, "maximum rows to load (0 = config or unlimited)")
	c.Flags().StringVar(&lf.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	c.Flags().IntVar(&lf.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repOutputPath, "output", "o", "", "output path (default <output_dir>/EDA_<dataset>.<ext>; text formats print to stdout)")
	reportCmd.Flags().StringVarP(&repFormat, "format", "f", "", "output format: xlsx|md|json|yaml (default from config)")
	reportCmd.Flags().StringVar(&repCatalog, "catalog", "", "feature catalog YAML (default embedded)")
	reportCmd.Flags().BoolVar(&repParallel, "parallel", false, "build sections concurrently")
	reportCmd.Flags().BoolVarP(&repQuiet, "quiet", "q", false, "hide the progress bar")
	reportCmd.Flags().StringVar(&repBaseline, "baseline", "", "fraud type used as the comparison baseline")
	reportCmd.Flags().StringSliceVar(&repFraudTypes, "fraud-types", nil, "fraud subtypes to profile (default from catalog)")
	addLoadFlags(reportCmd, &repLoad)
	reportCmd.Flags().StringVar(&repDriver, "driver", "", "SQL driver: sqlite|postgres")
	reportCmd.Flags().StringVar(&repDSN, "dsn", "", "SQL data source name")
	reportCmd.Flags().StringVar(&repQuery, "query", "", "SQL query selecting the transaction rows")
	reportCmd.Flags().StringVar(&repTable, "table", "", "SQL table to read when --query is empty")
}
