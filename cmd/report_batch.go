package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/fraudeda-cli/internal/catalog"
	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/KaramelBytes/fraudeda-cli/internal/report"
	"github.com/KaramelBytes/fraudeda-cli/internal/utils"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

var (
	rbOutDir     string
	rbFormat     string
	rbCatalog    string
	rbParallel   bool
	rbQuiet      bool
	rbKeepGoing  bool
	rbBaseline   string
	rbFraudTypes []string
	rbLoad       loadFlags
)

var reportBatchCmd = &cobra.Command{
	Use:   "report-batch <files...>",
	Short: "Build one EDA report per file; globs support ** across directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		format, err := resolveFormat(rbFormat, "")
		if err != nil {
			return err
		}
		loadOpt, err := rbLoad.options(cfg)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(rbCatalog)
		if err != nil {
			return err
		}
		outDir := rbOutDir
		if outDir == "" {
			outDir = outputDir()
		}
		opt := reportOptions(cfg, rbParallel)
		analysisOverrides(&opt.Analysis, rbBaseline, rbFraudTypes)

		out := cmd.OutOrStdout()
		total := len(files)
		var failed int
		taken := map[string]bool{}
		for i, path := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !rbQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			dst := uniqueReportPath(taken, outDir, path, format)
			err := buildOne(ctx, path, dst, loadOpt, cat, opt, format)
			if err != nil {
				if !rbKeepGoing {
					return fmt.Errorf("%s: %w", path, err)
				}
				failed++
				slog.Error("report failed", "file", path, "error", err)
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", filepath.Base(path), err)
				continue
			}
			if !rbQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", dst)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d report(s) failed", failed, total)
		}
		return nil
	},
}

func buildOne(ctx context.Context, path, dst string, loadOpt dataset.Options, cat *catalog.Catalog, opt report.Options, format report.Format) error {
	ds, err := dataset.LoadFile(path, loadOpt)
	if err != nil {
		return err
	}
	rep, err := report.Run(ctx, ds, cat, opt)
	if err != nil {
		return err
	}
	if err := rep.Save(dst, format); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	for _, f := range rep.Failures() {
		slog.Warn("section placeholder", "file", path, "error", f)
	}
	return nil
}

// uniqueReportPath returns EDA_<stem><ext>, suffixing __2, __3... until the
// name has not been handed out earlier in the batch.
func uniqueReportPath(taken map[string]bool, outDir, path string, format report.Format) string {
	stem := utils.Stem(path)
	name := "EDA_" + stem + format.Ext()
	for n := 2; taken[name]; n++ {
		name = fmt.Sprintf("EDA_%s__%d%s", stem, n, format.Ext())
	}
	taken[name] = true
	return filepath.Join(outDir, name)
}

// expandInputs resolves doublestar globs, keeps literal paths that exist,
// dedupes and sorts.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(reportBatchCmd)
	reportBatchCmd.Flags().StringVar(&rbOutDir, "out-dir", "", "directory for EDA_<name>.<ext> reports (default output_dir)")
	reportBatchCmd.Flags().StringVarP(&rbFormat, "format", "f", "", "output format: xlsx|md|json|yaml (default from config)")
	reportBatchCmd.Flags().StringVar(&rbCatalog, "catalog", "", "feature catalog YAML (default embedded)")
	reportBatchCmd.Flags().BoolVar(&rbParallel, "parallel", false, "build sections concurrently")
	reportBatchCmd.Flags().BoolVar(&rbQuiet, "quiet", false, "suppress progress and non-essential output")
	reportBatchCmd.Flags().BoolVar(&rbKeepGoing, "keep-going", false, "continue with the next file when one fails")
	reportBatchCmd.Flags().StringVar(&rbBaseline, "baseline", "", "fraud type used as the comparison baseline")
	reportBatchCmd.Flags().StringSliceVar(&rbFraudTypes, "fraud-types", nil, "fraud subtypes to profile (default from catalog)")
	addLoadFlags(reportBatchCmd, &rbLoad)
}
