package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test source defaults
	if cfg.Source.Port != 3306 {
		t.Errorf("expected source port 3306, got %d", cfg.Source.Port)
	}
	if cfg.Source.TLS != "preferred" {
		t.Errorf("expected source TLS 'preferred', got %s", cfg.Source.TLS)
	}
	if cfg.Source.MaxConnections != 10 {
		t.Errorf("expected source max_connections 10, got %d", cfg.Source.MaxConnections)
	}

	// Test destination defaults
	if cfg.Destination.Port != 3306 {
		t.Errorf("expected destination port 3306, got %d", cfg.Destination.Port)
	}

	// Test processing defaults
	if cfg.Processing.ChunkSize != 10000 {
		t.Errorf("expected chunk_size 10000, got %d", cfg.Processing.ChunkSize)
	}
	if cfg.Processing.SleepSeconds != 0 {
		t.Errorf("expected sleep_seconds 0, got %f", cfg.Processing.SleepSeconds)
	}

	// Test verification defaults
	if cfg.Verification.Method != "count" {
		t.Errorf("expected verification method 'count', got %s", cfg.Verification.Method)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected logging format 'json', got %s", cfg.Logging.Format)
	}
}

func TestTableSelectionAllColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    bool
	}{
		{"empty columns", nil, true},
		{"star entry", []string{"*"}, true},
		{"explicit columns", []string{"id", "name"}, false},
		{"single explicit column", []string{"name"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := TableSelection{Table: "orders", Columns: tt.columns}
			if got := sel.AllColumns(); got != tt.want {
				t.Errorf("AllColumns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigJobsMap(t *testing.T) {
	cfg := &Config{
		Jobs: map[string]JobConfig{
			"nightly_sync": {
				Tables: []TableSelection{
					{Table: "orders"},
					{Table: "customers", Columns: []string{"id", "name"}},
				},
			},
			"weekly_sync": {
				Tables: []TableSelection{
					{Table: "audit_log"},
				},
			},
		},
	}

	if len(cfg.Jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(cfg.Jobs))
	}

	job, exists := cfg.Jobs["nightly_sync"]
	if !exists {
		t.Fatal("expected 'nightly_sync' job to exist")
	}
	if len(job.Tables) != 2 {
		t.Errorf("expected 2 table selections, got %d", len(job.Tables))
	}
	if job.Tables[1].Table != "customers" {
		t.Errorf("expected second selection 'customers', got %s", job.Tables[1].Table)
	}
}

func TestGetJobProcessing(t *testing.T) {
	global := ProcessingConfig{ChunkSize: 10000, SleepSeconds: 0.5}

	tests := []struct {
		name string
		job  JobConfig
		want ProcessingConfig
	}{
		{
			name: "no job-specific settings",
			job:  JobConfig{},
			want: global,
		},
		{
			name: "job overrides chunk size only",
			job:  JobConfig{Processing: &ProcessingConfig{ChunkSize: 500}},
			want: ProcessingConfig{ChunkSize: 500, SleepSeconds: 0.5},
		},
		{
			name: "job overrides both",
			job:  JobConfig{Processing: &ProcessingConfig{ChunkSize: 500, SleepSeconds: 2}},
			want: ProcessingConfig{ChunkSize: 500, SleepSeconds: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.job.GetJobProcessing(global)
			if got != tt.want {
				t.Errorf("GetJobProcessing() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
