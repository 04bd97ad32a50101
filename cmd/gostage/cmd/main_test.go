package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecute(t *testing.T) {
	// Execute() calls os.Exit(1) on error, so the error path is not
	// exercised here. This is primarily a compile-time check.
	assert.NotNil(t, Execute)
}

func TestVersionVariables(t *testing.T) {
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, Commit, "Commit should not be empty")
}

func TestCLIFlagsDefaults(t *testing.T) {
	assert.Equal(t, "gostage.yaml", cfgFile, "cfgFile should default to gostage.yaml")
	assert.Equal(t, "", logLevel)
	assert.Equal(t, "", logFormat)
	assert.Equal(t, 0, chunkSize)
	assert.Equal(t, float64(0), sleepSeconds)
	assert.Equal(t, false, skipVerify)
}

func TestJobVariables(t *testing.T) {
	assert.Equal(t, "", planJob, "planJob should default to empty")
	assert.Equal(t, "", syncJob, "syncJob should default to empty")
}
