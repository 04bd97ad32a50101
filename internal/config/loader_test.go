package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test.yaml")

	configContent := `
source:
  host: localhost
  port: 3306
  user: testuser
  password: testpass
  database: company
  tls: disable
  max_connections: 5
  max_idle_connections: 2

destination:
  host: stage-host
  port: 3307
  user: stageuser
  password: stagepass
  database: company_stage

jobs:
  test_job:
    tables:
      - table: departments
      - table: employees
        columns: [name, email]
    include_schemas: [company]

processing:
  chunk_size: 500
  sleep_seconds: 0.5

logging:
  level: debug
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify source config
	if cfg.Source.Host != "localhost" {
		t.Errorf("expected source host 'localhost', got %s", cfg.Source.Host)
	}
	if cfg.Source.Port != 3306 {
		t.Errorf("expected source port 3306, got %d", cfg.Source.Port)
	}
	if cfg.Source.User != "testuser" {
		t.Errorf("expected source user 'testuser', got %s", cfg.Source.User)
	}
	if cfg.Source.MaxConnections != 5 {
		t.Errorf("expected source max_connections 5, got %d", cfg.Source.MaxConnections)
	}

	// Verify destination config
	if cfg.Destination.Host != "stage-host" {
		t.Errorf("expected destination host 'stage-host', got %s", cfg.Destination.Host)
	}

	// Verify job config
	if len(cfg.Jobs) != 1 {
		t.Errorf("expected 1 job, got %d", len(cfg.Jobs))
	}
	job, exists := cfg.Jobs["test_job"]
	if !exists {
		t.Fatal("expected 'test_job' to exist")
	}
	if len(job.Tables) != 2 {
		t.Errorf("expected 2 table selections, got %d", len(job.Tables))
	}
	if !job.Tables[0].AllColumns() {
		t.Error("expected 'departments' to select all columns")
	}
	if len(job.Tables[1].Columns) != 2 {
		t.Errorf("expected 2 columns on 'employees', got %v", job.Tables[1].Columns)
	}
	if len(job.IncludeSchemas) != 1 || job.IncludeSchemas[0] != "company" {
		t.Errorf("expected include_schemas [company], got %v", job.IncludeSchemas)
	}

	// Verify processing config
	if cfg.Processing.ChunkSize != 500 {
		t.Errorf("expected chunk_size 500, got %d", cfg.Processing.ChunkSize)
	}

	// Verify logging config
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	os.Setenv("TEST_DB_HOST", "env-host")
	os.Setenv("TEST_DB_PASS", "env-pass")
	defer func() {
		os.Unsetenv("TEST_DB_HOST")
		os.Unsetenv("TEST_DB_PASS")
	}()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-env.yaml")

	configContent := `
source:
  host: ${TEST_DB_HOST}
  user: root
  password: ${TEST_DB_PASS}
  database: company

destination:
  host: localhost
  user: root
  password: $TEST_DB_PASS
  database: company_stage

jobs:
  test_job:
    tables:
      - table: departments
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Source.Host != "env-host" {
		t.Errorf("expected substituted host 'env-host', got %s", cfg.Source.Host)
	}
	if cfg.Source.Password != "env-pass" {
		t.Errorf("expected substituted password, got %s", cfg.Source.Password)
	}
	if cfg.Destination.Password != "env-pass" {
		t.Errorf("expected $VAR form substituted, got %s", cfg.Destination.Password)
	}
}

func TestLoadMissingEnvVarKept(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-missing-env.yaml")

	configContent := `
source:
  host: ${GOSTAGE_UNSET_VAR}
  user: root
  database: company

destination:
  host: localhost
  user: root
  database: company_stage
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Unset variables are left as-is so the error surfaces at connect time
	if cfg.Source.Host != "${GOSTAGE_UNSET_VAR}" {
		t.Errorf("expected unset env var to remain, got %s", cfg.Source.Host)
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent config file")
	}
}

func TestGetJob(t *testing.T) {
	cfg := &Config{
		Jobs: map[string]JobConfig{
			"nightly_sync": {Tables: []TableSelection{{Table: "orders"}}},
		},
	}

	job, err := cfg.GetJob("nightly_sync")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(job.Tables) != 1 {
		t.Errorf("expected 1 table selection, got %d", len(job.Tables))
	}

	_, err = cfg.GetJob("missing_job")
	if err == nil {
		t.Error("expected error for missing job")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()

	cfg.ApplyOverrides("debug", "text", 2000, 1.5, true)

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected log format 'text', got %s", cfg.Logging.Format)
	}
	if cfg.Processing.ChunkSize != 2000 {
		t.Errorf("expected chunk_size 2000, got %d", cfg.Processing.ChunkSize)
	}
	if cfg.Processing.SleepSeconds != 1.5 {
		t.Errorf("expected sleep_seconds 1.5, got %f", cfg.Processing.SleepSeconds)
	}
	if !cfg.Verification.SkipVerification {
		t.Error("expected skip_verification to be set")
	}
}

func TestApplyOverridesZeroValuesIgnored(t *testing.T) {
	cfg := DefaultConfig()
	originalChunk := cfg.Processing.ChunkSize

	cfg.ApplyOverrides("", "", 0, 0, false)

	if cfg.Logging.Level != "info" {
		t.Errorf("empty override should not change level, got %s", cfg.Logging.Level)
	}
	if cfg.Processing.ChunkSize != originalChunk {
		t.Errorf("zero override should not change chunk_size, got %d", cfg.Processing.ChunkSize)
	}
	if cfg.Verification.SkipVerification {
		t.Error("false override should not set skip_verification")
	}
}

func TestApplyJobOverrides(t *testing.T) {
	cfg := DefaultConfig()
	job := &JobConfig{
		Processing: &ProcessingConfig{ChunkSize: 500},
	}

	// CLI flag wins over the job setting
	processing := cfg.ApplyJobOverrides(job, 250, 0)
	if processing.ChunkSize != 250 {
		t.Errorf("expected CLI chunk_size 250, got %d", processing.ChunkSize)
	}

	// without a CLI flag the job setting wins over the global
	processing = cfg.ApplyJobOverrides(job, 0, 0)
	if processing.ChunkSize != 500 {
		t.Errorf("expected job chunk_size 500, got %d", processing.ChunkSize)
	}
}
