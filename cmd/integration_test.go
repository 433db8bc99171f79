package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const txCSV = `label,fraud_type,channel,amount,timestamp,rule_large_cash_deposit
1,mule_ring,web,100,2024-01-01 23:00:00,1
0,normal,atm,50,2024-01-02 10:00:00,0
1,layering,web,75.5,2024-01-03 02:00:00,1
0,normal,web,20,2024-01-04 14:00:00,0
`

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between invocations. Slice flags are left alone.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if strings.HasSuffix(fl.Value.Type(), "Slice") {
			return
		}
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, "command %v", args)
	return out
}

// isolatedHome points HOME at a temp dir so config reads and writes stay local.
func isolatedHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCLI_ReportMarkdownToStdout(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, filepath.Join(home, "tx.csv"), txCSV)

	out := mustRun(t, "report", path, "-f", "md", "-q")
	assert.Contains(t, out, "[REPORT SUMMARY]")
	assert.Contains(t, out, "## 1_Overview")
	assert.Contains(t, out, "## 11_Top_Correlations")
	assert.Contains(t, out, "| Total Transactions | 4 |")
}

func TestCLI_ReportXLSXIntoConfiguredDir(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, filepath.Join(home, "tx.csv"), txCSV)
	outDir := filepath.Join(home, "reports")

	mustRun(t, "config", "set", "output_dir", outDir)
	show := mustRun(t, "config", "show")
	assert.Contains(t, show, "output_dir: "+outDir)

	out := mustRun(t, "report", path, "-q")
	want := filepath.Join(outDir, "EDA_tx.xlsx")
	assert.Contains(t, out, "✓ Wrote xlsx report to "+want)

	f, err := excelize.OpenFile(want)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 11)
	assert.Equal(t, "1_Overview", f.GetSheetList()[0])
}

func TestCLI_ReportMissingLabelFails(t *testing.T) {
	home := isolatedHome(t)
	path := writeFile(t, filepath.Join(home, "nolabel.csv"), "fraud_type,amount\nnormal,1\n")

	_, err := runCmd(t, "report", path, "-f", "json", "-q")
	var mc *dataset.MissingColumnError
	require.True(t, errors.As(err, &mc), "got %v", err)
	assert.Equal(t, "label", mc.Column)
}

func TestCLI_ReportBatchRecursiveGlob(t *testing.T) {
	home := isolatedHome(t)
	writeFile(t, filepath.Join(home, "d1", "tx.csv"), txCSV)
	writeFile(t, filepath.Join(home, "d2", "sub", "tx.csv"), txCSV)
	outDir := filepath.Join(home, "out")

	out := mustRun(t, "report-batch", filepath.Join(home, "**", "tx.csv"), "--out-dir", outDir, "-f", "json")
	assert.Contains(t, out, "[1/2] Processing tx.csv...")
	assert.Contains(t, out, "[2/2] Processing tx.csv...")

	for _, name := range []string{"EDA_tx.json", "EDA_tx__2.json"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}

	_, err := runCmd(t, "report-batch", filepath.Join(home, "nothing", "*.csv"))
	assert.ErrorContains(t, err, "no input files matched")
}

func TestCLI_CatalogCommands(t *testing.T) {
	home := isolatedHome(t)

	rules := mustRun(t, "catalog", "rules")
	assert.Contains(t, rules, "rule_large_cash_deposit")
	assert.Regexp(t, `^\d+ rules \(ranking ties keep this order\)`, rules)

	show := mustRun(t, "catalog", "show", "--group", "Labels")
	assert.Contains(t, show, "- label (")

	dst := filepath.Join(home, "catalog.json")
	mustRun(t, "catalog", "export", "-f", "json", "-o", dst)
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"rule_prefix": "rule_"`)
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	isolatedHome(t)
	_, err := runCmd(t, "config", "set", "output_format", "parquet")
	assert.ErrorContains(t, err, "invalid output_format")
	_, err = runCmd(t, "config", "set", "categorical_flag_rate", "2")
	assert.ErrorContains(t, err, "invalid rate")
	_, err = runCmd(t, "config", "set", "nope", "1")
	assert.ErrorContains(t, err, "unknown key")
}

func TestUniqueReportPathNeverReusesAName(t *testing.T) {
	taken := map[string]bool{}
	var got []string
	for _, in := range []string{"a/tx.csv", "b/tx.csv", "c/tx__2.csv"} {
		got = append(got, uniqueReportPath(taken, "out", in, "xlsx"))
	}
	assert.Equal(t, []string{
		filepath.Join("out", "EDA_tx.xlsx"),
		filepath.Join("out", "EDA_tx__2.xlsx"),
		filepath.Join("out", "EDA_tx__2__2.xlsx"),
	}, got)
}

func TestCLI_ReportBatchSuffixedStemDoesNotOverwrite(t *testing.T) {
	home := isolatedHome(t)
	writeFile(t, filepath.Join(home, "a", "tx.csv"), txCSV)
	writeFile(t, filepath.Join(home, "b", "tx.csv"), txCSV)
	writeFile(t, filepath.Join(home, "c", "tx__2.csv"), txCSV)
	outDir := filepath.Join(home, "out")

	mustRun(t, "report-batch", filepath.Join(home, "*", "*.csv"), "--out-dir", outDir, "-f", "json", "--quiet")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"EDA_tx.json", "EDA_tx__2.json", "EDA_tx__2__2.json"}, names)
}
