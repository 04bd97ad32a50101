package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCommandStructure(t *testing.T) {
	assert.NotNil(t, validateCmd)
	assert.Equal(t, "validate", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Short)
	assert.NotEmpty(t, validateCmd.Long)
	assert.NotNil(t, validateCmd.RunE)
}

func TestRunValidateConfigNotFound(t *testing.T) {
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()
	cfgFile = "nonexistent-config.yaml"

	err := runValidate(validateCmd, []string{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRunValidateInvalidConfig(t *testing.T) {
	originalCfgFile := cfgFile
	defer func() {
		cfgFile = originalCfgFile
	}()

	// source host is missing, so validation fails before any connection
	cfgFile = writeTestConfig(t, `source:
  user: root
  password: test
  database: company

destination:
  host: 127.0.0.1
  user: root
  password: test
  database: company_stage

jobs:
  nightly_sync:
    tables:
      - table: departments
`)

	err := runValidate(validateCmd, []string{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}
