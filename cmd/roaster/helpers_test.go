package main

import (
	"bytes"
	"testing"
)

const fixturesDir = "../../internal/scrape/testdata"

// resetFlags restores every command flag to its default between in-process runs.
func resetFlags() {
	configPath = ""
	servePort, serveFixtures = 0, ""
	scrapeDriver, scrapeFixtures, scrapeJSON = "", "", false
	roastLanguage, roastDataFile, roastAPIKey = "auto", "", ""
	roastDriver, roastFixtures, roastVerbose = "", "", false
}

// executeCommand runs the root command with args and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("BROWSER_DRIVER", "")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
