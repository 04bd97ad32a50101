package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	// Validate source database
	if err := c.validateDatabase("source", &c.Source); err != nil {
		errors = append(errors, err...)
	}

	// Validate destination database
	if err := c.validateDatabase("destination", &c.Destination); err != nil {
		errors = append(errors, err...)
	}

	// Validate jobs
	if len(c.Jobs) == 0 {
		errors = append(errors, ValidationError{
			Field:   "jobs",
			Message: "at least one job must be defined",
		})
	}
	for name, job := range c.Jobs {
		if err := c.validateJob(name, &job); err != nil {
			errors = append(errors, err...)
		}
	}

	// Validate processing settings
	if err := c.validateProcessing(); err != nil {
		errors = append(errors, err...)
	}

	// Validate verification settings
	if err := c.validateVerification(); err != nil {
		errors = append(errors, err...)
	}

	// Validate logging settings
	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateJob(name string, job *JobConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("jobs.%s", name)

	if len(job.Tables) == 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tables",
			Message: "at least one table selection is required",
		})
	}

	seen := make(map[string]bool)
	for i, sel := range job.Tables {
		selPrefix := fmt.Sprintf("%s.tables[%d]", prefix, i)

		if sel.Table == "" {
			errors = append(errors, ValidationError{
				Field:   selPrefix + ".table",
				Message: "table name is required",
			})
			continue
		}

		if seen[sel.Table] {
			errors = append(errors, ValidationError{
				Field:   selPrefix + ".table",
				Message: fmt.Sprintf("table %q is selected more than once", sel.Table),
			})
		}
		seen[sel.Table] = true

		// A "*" entry only makes sense on its own
		if len(sel.Columns) > 1 {
			for _, col := range sel.Columns {
				if col == "*" {
					errors = append(errors, ValidationError{
						Field:   selPrefix + ".columns",
						Message: "'*' cannot be combined with explicit column names",
					})
					break
				}
			}
		}

		colSeen := make(map[string]bool)
		for _, col := range sel.Columns {
			if col == "" {
				errors = append(errors, ValidationError{
					Field:   selPrefix + ".columns",
					Message: "column names cannot be empty",
				})
				continue
			}
			if colSeen[col] {
				errors = append(errors, ValidationError{
					Field:   selPrefix + ".columns",
					Message: fmt.Sprintf("column %q is listed more than once", col),
				})
			}
			colSeen[col] = true
		}
	}

	if job.Processing != nil {
		if job.Processing.ChunkSize < 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".processing.chunk_size",
				Message: "chunk_size cannot be negative",
			})
		}
		if job.Processing.SleepSeconds < 0 {
			errors = append(errors, ValidationError{
				Field:   prefix + ".processing.sleep_seconds",
				Message: "sleep_seconds cannot be negative",
			})
		}
	}

	return errors
}

func (c *Config) validateProcessing() ValidationErrors {
	var errors ValidationErrors

	if c.Processing.ChunkSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Processing.SleepSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.sleep_seconds",
			Message: "sleep_seconds cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateVerification() ValidationErrors {
	var errors ValidationErrors

	validMethods := map[string]bool{"count": true, "none": true, "": true}
	if !validMethods[c.Verification.Method] {
		errors = append(errors, ValidationError{
			Field:   "verification.method",
			Message: "method must be 'count' or 'none'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
