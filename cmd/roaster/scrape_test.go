package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/instagram-roaster/internal/scrape"
	"github.com/jonathan/instagram-roaster/internal/types"
)

func TestScrapeCommand_Fixture(t *testing.T) {
	stdout, _, err := executeCommand(t, "scrape", "profile", "--fixtures", fixturesDir)
	require.NoError(t, err)

	assert.Contains(t, stdout, "INSTAGRAM PROFILE")
	assert.Contains(t, stdout, "@janedoe")
	assert.Contains(t, stdout, "Followers: 1234")
	assert.Contains(t, stdout, "Post images: 10")
	assert.Contains(t, stdout, "... and 5 more")
}

func TestScrapeCommand_JSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "scrape", "private", "--fixtures", fixturesDir, "--json")
	require.NoError(t, err)

	var profile types.ProfileData
	require.NoError(t, json.Unmarshal([]byte(stdout), &profile))
	assert.Equal(t, "secretsam", profile.Username)
	assert.True(t, profile.IsPrivate)
	assert.Equal(t, types.Count(2500), profile.Followers)
}

func TestScrapeCommand_NotFound(t *testing.T) {
	_, _, err := executeCommand(t, "scrape", "ghost", "--fixtures", fixturesDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, scrape.ErrProfileNotFound)
	assert.Contains(t, err.Error(), "@ghost")
}

func TestScrapeCommand_MissingFixtureDir(t *testing.T) {
	_, _, err := executeCommand(t, "scrape", "profile", "--fixtures", "/nonexistent/fixtures")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read fixture directory")
}

func TestScrapeCommand_RequiresUsername(t *testing.T) {
	_, _, err := executeCommand(t, "scrape")
	assert.Error(t, err)
}

func TestScrapeCommand_UnknownDriver(t *testing.T) {
	_, _, err := executeCommand(t, "scrape", "profile", "--driver", "firefox")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create renderer")
}
