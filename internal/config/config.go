package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Catalog override; empty uses the embedded catalog.
	CatalogPath string `mapstructure:"catalog_path" yaml:"catalog_path"`

	// Output
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
	Parallel     bool   `mapstructure:"parallel" yaml:"parallel"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Loading
	MaxRows   int    `mapstructure:"max_rows" yaml:"max_rows"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Column layout and thresholds
	LabelColumn         string   `mapstructure:"label_column" yaml:"label_column"`
	FraudTypeColumn     string   `mapstructure:"fraud_type_column" yaml:"fraud_type_column"`
	BaselineFraudType   string   `mapstructure:"baseline_fraud_type" yaml:"baseline_fraud_type"`
	FraudTypes          []string `mapstructure:"fraud_types" yaml:"fraud_types"`
	InternalColumns     []string `mapstructure:"internal_columns" yaml:"internal_columns"`
	CategoricalFlagRate float64  `mapstructure:"categorical_flag_rate" yaml:"categorical_flag_rate"`
	TopRules            int      `mapstructure:"top_rules" yaml:"top_rules"`

	// SQL source
	SQLDriver string `mapstructure:"sql_driver" yaml:"sql_driver"`
	SQLDSN    string `mapstructure:"sql_dsn" yaml:"sql_dsn"`
	SQLQuery  string `mapstructure:"sql_query" yaml:"sql_query"`
	SQLTable  string `mapstructure:"sql_table" yaml:"sql_table"`
}

// Dir returns ~/.fraudeda.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fraudeda"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.fraudeda/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (applied by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FRAUDEDA")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog_path", "")
	v.SetDefault("output_format", "xlsx")
	v.SetDefault("output_dir", ".")
	v.SetDefault("parallel", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("max_rows", 0)
	v.SetDefault("delimiter", "")
	v.SetDefault("label_column", "label")
	v.SetDefault("fraud_type_column", "fraud_type")
	v.SetDefault("baseline_fraud_type", "")
	v.SetDefault("fraud_types", []string{})
	v.SetDefault("internal_columns", []string{"account_id_x", "account_id_y"})
	v.SetDefault("categorical_flag_rate", 0.4)
	v.SetDefault("top_rules", 5)
	v.SetDefault("sql_driver", "")
	v.SetDefault("sql_dsn", "")
	v.SetDefault("sql_query", "")
	v.SetDefault("sql_table", "")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read; an explicit --config must exist and parse
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	return &c, nil
}
