// Package config provides configuration structures and loading for movenrich.
package config

// Config represents the complete application configuration.
type Config struct {
	Taxonomy   TaxonomyConfig   `yaml:"taxonomy" mapstructure:"taxonomy"`
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Preprocess PreprocessConfig `yaml:"preprocess" mapstructure:"preprocess"`
	Classify   ClassifyConfig   `yaml:"classify" mapstructure:"classify"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// TaxonomyConfig points at the CNJ movement tree.
type TaxonomyConfig struct {
	Path            string `yaml:"path" mapstructure:"path"`
	DuplicatePolicy string `yaml:"duplicate_policy" mapstructure:"duplicate_policy"` // "last" or "first"
}

// InputConfig describes the raw movement dataset.
type InputConfig struct {
	Path             string   `yaml:"path" mapstructure:"path"`
	Delimiter        string   `yaml:"delimiter" mapstructure:"delimiter"`
	TimestampLayouts []string `yaml:"timestamp_layouts" mapstructure:"timestamp_layouts"`
	Location         string   `yaml:"location" mapstructure:"location"` // IANA zone for layouts without offset
}

// OutputConfig describes where enriched records are written.
type OutputConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	Format    string `yaml:"format" mapstructure:"format"` // "csv" or "eventlog"
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
}

// PreprocessConfig holds the filtering bounds for preprocessing.
type PreprocessConfig struct {
	ExcludedGroups     []string `yaml:"excluded_groups" mapstructure:"excluded_groups"`
	MinDurationSeconds float64  `yaml:"min_duration_seconds" mapstructure:"min_duration_seconds"`
	MaxDurationSeconds float64  `yaml:"max_duration_seconds" mapstructure:"max_duration_seconds"`
}

// ClassifyConfig selects the movement detail rule set.
type ClassifyConfig struct {
	DetailMode      string            `yaml:"detail_mode" mapstructure:"detail_mode"` // "simple" or "rich"
	CompositeDetail bool              `yaml:"composite_detail" mapstructure:"composite_detail"`
	PhaseSuffix     bool              `yaml:"phase_suffix" mapstructure:"phase_suffix"`
	Overrides       map[string]string `yaml:"overrides" mapstructure:"overrides"` // movement id -> label
}

// ProcessingConfig represents batch processing settings.
type ProcessingConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// StoreConfig represents the optional relational sink for enriched records.
type StoreConfig struct {
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	Driver         string `yaml:"driver" mapstructure:"driver"` // mysql or sqlite
	Path           string `yaml:"path" mapstructure:"path"`     // sqlite file, ":memory:" allowed
	Host           string `yaml:"host" mapstructure:"host"`
	Port           int    `yaml:"port" mapstructure:"port"`
	User           string `yaml:"user" mapstructure:"user"`
	Password       string `yaml:"password" mapstructure:"password"`
	Database       string `yaml:"database" mapstructure:"database"`
	TLS            string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	Table          string `yaml:"table" mapstructure:"table"`
	BatchSize      int    `yaml:"batch_size" mapstructure:"batch_size"`
	MaxConnections int    `yaml:"max_connections" mapstructure:"max_connections"`
	Verify         string `yaml:"verify" mapstructure:"verify"` // count, sha256, or skip
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultTimestampLayouts are tried in order when parsing dataInicio/dataFinal.
var DefaultTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// DefaultExcludedGroups are the administrative CNJ groups dropped before analysis:
// publication, deadline lapse, conclusion and routine filing.
var DefaultExcludedGroups = []string{
	"Publicação",
	"Decurso de Prazo",
	"Conclusão",
	"Mero Expediente",
}

// DefaultOverrides maps well-known movement codes to canonical detail labels.
var DefaultOverrides = map[string]string{
	"85":    "Petição Inicial",
	"12271": "Petição Contestação",
	"60":    "Expedição de Documento",
	"11010": "Mero Expediente",
	"106":   "Mandado Judicial",
	"985":   "Mandado de Citação",
	"970":   "Audiência",
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	overrides := make(map[string]string, len(DefaultOverrides))
	for k, v := range DefaultOverrides {
		overrides[k] = v
	}

	return &Config{
		Taxonomy: TaxonomyConfig{
			Path:            "cnj-movimentos-tree.json",
			DuplicatePolicy: "last",
		},
		Input: InputConfig{
			Delimiter:        ",",
			TimestampLayouts: append([]string(nil), DefaultTimestampLayouts...),
			Location:         "UTC",
		},
		Output: OutputConfig{
			Format:    "csv",
			Delimiter: ",",
		},
		Preprocess: PreprocessConfig{
			ExcludedGroups:     append([]string(nil), DefaultExcludedGroups...),
			MinDurationSeconds: 0,
			MaxDurationSeconds: 1e7,
		},
		Classify: ClassifyConfig{
			DetailMode: "simple",
			Overrides:  overrides,
		},
		Processing: ProcessingConfig{
			Workers: 1,
		},
		Store: StoreConfig{
			Enabled:        false,
			Driver:         "sqlite",
			Path:           "movenrich.db",
			Port:           3306,
			TLS:            "preferred",
			Table:          "enriched_movements",
			BatchSize:      500,
			MaxConnections: 4,
			Verify:         "count",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
