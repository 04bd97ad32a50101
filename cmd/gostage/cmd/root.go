package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile      string
	logLevel     string
	logFormat    string
	chunkSize    int
	sleepSeconds float64
	skipVerify   bool
)

var rootCmd = &cobra.Command{
	Use:   "gostage",
	Short: "MySQL Stage-and-Merge Data Sync",
	Long: `A CLI tool for syncing MySQL relational data from a source database
into a destination database in foreign-key dependency order.

Features:
  - Automatic load-order resolution over the foreign-key graph
  - Stage-then-merge copy: chunked staging, one set-oriented REPLACE
  - Incremental resumable sync via persistent per-table cursors
  - Column-level table selection with required-column completion
  - Post-merge row count verification`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "gostage.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Processing overrides
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 0,
		"Override chunk size (rows per staging batch)")
	rootCmd.PersistentFlags().Float64Var(&sleepSeconds, "sleep", 0,
		"Override sleep seconds between chunks")

	rootCmd.PersistentFlags().BoolVar(&skipVerify, "skip-verify", false,
		"Skip row count verification after merge")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel     string
	LogFormat    string
	ChunkSize    int
	SleepSeconds float64
	SkipVerify   bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		ChunkSize:    chunkSize,
		SleepSeconds: sleepSeconds,
		SkipVerify:   skipVerify,
	}
}
