package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/fraudeda-cli/internal/catalog"
	"github.com/KaramelBytes/fraudeda-cli/internal/utils"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	catPath   string
	catGroup  string
	catOutput string
	catFormat string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect or export the feature catalog",
	Example: `  fraudeda catalog show --group "Graph – Sender"
  fraudeda catalog rules
  fraudeda catalog export -o my_catalog.yaml`,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List catalogued columns with type, group and definition",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog(catPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		n := 0
		for _, e := range c.Entries {
			if catGroup != "" && !strings.EqualFold(e.Group, catGroup) {
				continue
			}
			fmt.Fprintf(out, "- %s (%s, %s): %s\n", e.Name, e.DataType, e.Group, e.Definition)
			n++
		}
		if n == 0 {
			fmt.Fprintln(out, "(no entries)")
		}
		return nil
	},
}

var catalogRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rule registry in ranking tie-break order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCatalog(catPath)
		if err != nil {
			return err
		}
		reg, err := catalog.NewRegistry(c)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d rules (ranking ties keep this order)\n", reg.Len())
		for i, r := range reg.Rules() {
			sev := "-"
			if r.Severity != nil {
				sev = fmt.Sprintf("%d %s", *r.Severity, c.SeverityDescription(*r.Severity))
			}
			weight := "-"
			if r.Weight != nil {
				weight = fmt.Sprintf("%g", *r.Weight)
			}
			fmt.Fprintf(out, "%2d. %s  severity=%s  weight=%s\n    %s\n", i+1, r.Name, strings.TrimSpace(sev), weight, r.Label)
		}
		return nil
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the effective catalog as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		var b []byte
		switch strings.ToLower(catFormat) {
		case "", "yaml", "yml":
			if catPath == "" && (cfg == nil || cfg.CatalogPath == "") {
				b = catalog.Raw()
				break
			}
			c, err := loadCatalog(catPath)
			if err != nil {
				return err
			}
			if b, err = yaml.Marshal(c); err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
		case "json":
			c, err := loadCatalog(catPath)
			if err != nil {
				return err
			}
			if b, err = utils.PrettyJSON(c); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported --format: %s (use yaml|json)", catFormat)
		}
		if catOutput == "" {
			_, err := cmd.OutOrStdout().Write(b)
			return err
		}
		if err := utils.SafeWriteFile(catOutput, b); err != nil {
			return fmt.Errorf("write catalog: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote catalog to %s\n", catOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogRulesCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.PersistentFlags().StringVar(&catPath, "catalog", "", "feature catalog YAML (default embedded)")
	catalogShowCmd.Flags().StringVar(&catGroup, "group", "", "only show entries in this group")
	catalogExportCmd.Flags().StringVarP(&catOutput, "output", "o", "", "write to file instead of stdout")
	catalogExportCmd.Flags().StringVarP(&catFormat, "format", "f", "yaml", "export format: yaml|json")
}
