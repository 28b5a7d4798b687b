package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/instagram-roaster/internal/llm"
)

func TestRoastCommand_NoCredentials(t *testing.T) {
	_, stderr, err := executeCommand(t, "roast", "profile", "--fixtures", fixturesDir, "--verbose")
	require.Error(t, err)

	assert.ErrorIs(t, err, llm.ErrNoCredentials)
	assert.Contains(t, err.Error(), "failed to roast @profile")
	assert.Contains(t, stderr, "[resolve_profile]")
	assert.Contains(t, stderr, "[build_prompt]")
}

func TestRoastCommand_DataFile(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(dataFile, []byte(`{"username":"ghost","bio":"hi","followers":"10"}`), 0644))

	// The profile comes from the file, so the missing fixture is never consulted.
	_, _, err := executeCommand(t, "roast", "ghost", "--fixtures", fixturesDir, "--data", dataFile)
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrNoCredentials)
}

func TestRoastCommand_MissingDataFile(t *testing.T) {
	_, _, err := executeCommand(t, "roast", "profile", "--fixtures", fixturesDir, "--data", "/nonexistent/profile.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read profile data")
}

func TestRoastCommand_NotFound(t *testing.T) {
	_, _, err := executeCommand(t, "roast", "ghost", "--fixtures", fixturesDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instagram profile not found")
}

func TestRootCommand_InvalidConfigFile(t *testing.T) {
	_, _, err := executeCommand(t, "--config", "/nonexistent/config.json", "scrape", "profile", "--fixtures", fixturesDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
