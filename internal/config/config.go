// Package config provides configuration structures and loading for GoStage.
package config

// Config represents the complete application configuration.
type Config struct {
	Source       DatabaseConfig       `yaml:"source" mapstructure:"source"`
	Destination  DatabaseConfig       `yaml:"destination" mapstructure:"destination"`
	Jobs         map[string]JobConfig `yaml:"jobs" mapstructure:"jobs"`
	Processing   ProcessingConfig     `yaml:"processing" mapstructure:"processing"`
	Verification VerificationConfig   `yaml:"verification" mapstructure:"verification"`
	Logging      LoggingConfig        `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents a MySQL database connection configuration.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// JobConfig represents a sync job configuration.
//
// Tables is an ordered list of table selections; the effective load order
// is computed from foreign-key dependencies at plan time, so the order here
// only controls presentation.
type JobConfig struct {
	Tables         []TableSelection  `yaml:"tables" mapstructure:"tables"`
	IncludeSchemas []string          `yaml:"include_schemas" mapstructure:"include_schemas"`
	ExcludeSchemas []string          `yaml:"exclude_schemas" mapstructure:"exclude_schemas"`
	Processing     *ProcessingConfig `yaml:"processing,omitempty" mapstructure:"processing"`
}

// TableSelection selects a table and the columns to sync from it.
// An empty column list (or the single entry "*") selects every column.
// Table names may be bare ("departments") or schema-qualified
// ("company.departments"); bare names are resolved at plan time.
type TableSelection struct {
	Table   string   `yaml:"table" mapstructure:"table"`
	Columns []string `yaml:"columns" mapstructure:"columns"`
}

// AllColumns reports whether this selection means "every source column".
func (ts *TableSelection) AllColumns() bool {
	if len(ts.Columns) == 0 {
		return true
	}
	return len(ts.Columns) == 1 && ts.Columns[0] == "*"
}

// ProcessingConfig represents chunked copy settings.
type ProcessingConfig struct {
	ChunkSize    int     `yaml:"chunk_size" mapstructure:"chunk_size"`
	SleepSeconds float64 `yaml:"sleep_seconds" mapstructure:"sleep_seconds"`
}

// VerificationConfig represents post-merge verification settings.
type VerificationConfig struct {
	Method           string `yaml:"method" mapstructure:"method"` // "count" or "none"
	SkipVerification bool   `yaml:"skip_verification" mapstructure:"skip_verification"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Destination: DatabaseConfig{
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     10,
			MaxIdleConnections: 5,
		},
		Processing: ProcessingConfig{
			ChunkSize:    10000,
			SleepSeconds: 0,
		},
		Verification: VerificationConfig{
			Method:           "count",
			SkipVerification: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// GetJobProcessing returns the processing config for a job, falling back to
// global settings for any value the job leaves unset.
func (jc *JobConfig) GetJobProcessing(global ProcessingConfig) ProcessingConfig {
	if jc.Processing == nil {
		return global
	}

	result := global
	if jc.Processing.ChunkSize > 0 {
		result.ChunkSize = jc.Processing.ChunkSize
	}
	if jc.Processing.SleepSeconds > 0 {
		result.SleepSeconds = jc.Processing.SleepSeconds
	}
	return result
}
