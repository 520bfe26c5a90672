package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadOrDefault behaves like Load, but returns DefaultConfig when the file
// does not exist. Any other read or parse error is returned.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		substituteEnvVars(cfg)
		return cfg, nil
	}
	return Load(configPath)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	// Unmarshal merges into existing maps, so a table set in the file must
	// start empty to replace the defaults rather than extend them.
	if v.IsSet("classify.overrides") {
		cfg.Classify.Overrides = nil
	}
	if v.IsSet("preprocess.excluded_groups") {
		cfg.Preprocess.ExcludedGroups = nil
	}
	if v.IsSet("input.timestamp_layouts") {
		cfg.Input.TimestampLayouts = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns in paths and store credentials.
func substituteEnvVars(cfg *Config) {
	cfg.Taxonomy.Path = expandEnvVar(cfg.Taxonomy.Path)
	cfg.Input.Path = expandEnvVar(cfg.Input.Path)
	cfg.Output.Path = expandEnvVar(cfg.Output.Path)

	cfg.Store.Path = expandEnvVar(cfg.Store.Path)
	cfg.Store.Host = expandEnvVar(cfg.Store.Host)
	cfg.Store.User = expandEnvVar(cfg.Store.User)
	cfg.Store.Password = expandEnvVar(cfg.Store.Password)
	cfg.Store.Database = expandEnvVar(cfg.Store.Database)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
// Unknown variables are left untouched.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// Overrides contains flag values that take precedence over the config file.
// Zero values leave the corresponding setting unchanged.
type Overrides struct {
	LogLevel     string
	LogFormat    string
	TaxonomyPath string
	InputPath    string
	OutputPath   string
	OutputFormat string
	DetailMode   string
	Workers      int
	StoreEnabled bool
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.TaxonomyPath != "" {
		c.Taxonomy.Path = o.TaxonomyPath
	}
	if o.InputPath != "" {
		c.Input.Path = o.InputPath
	}
	if o.OutputPath != "" {
		c.Output.Path = o.OutputPath
	}
	if o.OutputFormat != "" {
		c.Output.Format = o.OutputFormat
	}
	if o.DetailMode != "" {
		c.Classify.DetailMode = o.DetailMode
	}
	if o.Workers > 0 {
		c.Processing.Workers = o.Workers
	}
	if o.StoreEnabled {
		c.Store.Enabled = true
	}
}
