package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/fraudeda-cli/internal/config"
	"github.com/KaramelBytes/fraudeda-cli/internal/report"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set fraudeda configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		if cfg.CatalogPath != "" {
			fmt.Fprintf(out, "catalog_path: %s\n", cfg.CatalogPath)
		}
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "parallel: %t\n", cfg.Parallel)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "max_rows: %d\n", cfg.MaxRows)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		fmt.Fprintf(out, "label_column: %s\n", cfg.LabelColumn)
		fmt.Fprintf(out, "fraud_type_column: %s\n", cfg.FraudTypeColumn)
		if cfg.BaselineFraudType != "" {
			fmt.Fprintf(out, "baseline_fraud_type: %s\n", cfg.BaselineFraudType)
		}
		if len(cfg.FraudTypes) > 0 {
			fmt.Fprintf(out, "fraud_types: %s\n", strings.Join(cfg.FraudTypes, ","))
		}
		fmt.Fprintf(out, "internal_columns: %s\n", strings.Join(cfg.InternalColumns, ","))
		fmt.Fprintf(out, "categorical_flag_rate: %.3f\n", cfg.CategoricalFlagRate)
		fmt.Fprintf(out, "top_rules: %d\n", cfg.TopRules)
		if cfg.SQLDriver != "" {
			fmt.Fprintf(out, "sql_driver: %s\n", cfg.SQLDriver)
			fmt.Fprintf(out, "sql_dsn: %s\n", mask(cfg.SQLDSN))
		}
		if cfg.SQLQuery != "" {
			fmt.Fprintf(out, "sql_query: %s\n", cfg.SQLQuery)
		}
		if cfg.SQLTable != "" {
			fmt.Fprintf(out, "sql_table: %s\n", cfg.SQLTable)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigKey(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigKey(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "catalog_path":
		c.CatalogPath = val
	case "output_format":
		f, err := report.ParseFormat(val)
		if err != nil {
			return fmt.Errorf("invalid output_format: %w", err)
		}
		c.OutputFormat = string(f)
	case "output_dir":
		c.OutputDir = val
	case "parallel":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for parallel: %v", val)
		}
		c.Parallel = b
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug|info|warn|error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "max_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for max_rows: %v", val)
		}
		c.MaxRows = i
	case "delimiter":
		c.Delimiter = val
	case "label_column":
		c.LabelColumn = val
	case "fraud_type_column":
		c.FraudTypeColumn = val
	case "baseline_fraud_type":
		c.BaselineFraudType = val
	case "fraud_types":
		c.FraudTypes = splitList(val)
	case "internal_columns":
		c.InternalColumns = splitList(val)
	case "categorical_flag_rate":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid rate for categorical_flag_rate: %v (use 0..1)", val)
		}
		c.CategoricalFlagRate = f
	case "top_rules":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for top_rules: %v", val)
		}
		c.TopRules = i
	case "sql_driver":
		switch val {
		case "sqlite", "postgres", "":
			c.SQLDriver = val
		default:
			return fmt.Errorf("invalid sql_driver: %s (use sqlite or postgres)", val)
		}
	case "sql_dsn":
		c.SQLDSN = val
	case "sql_query":
		c.SQLQuery = val
	case "sql_table":
		c.SQLTable = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
