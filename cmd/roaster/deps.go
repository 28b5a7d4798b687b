package main

import (
	"fmt"
	"os"

	"github.com/jonathan/instagram-roaster/internal/config"
	"github.com/jonathan/instagram-roaster/internal/fetch"
	"github.com/jonathan/instagram-roaster/internal/llm"
	"github.com/jonathan/instagram-roaster/internal/observability"
	"github.com/jonathan/instagram-roaster/internal/pipeline"
	"github.com/jonathan/instagram-roaster/internal/scrape"
)

// loadConfig loads the configuration and installs the process logger.
// Logs go to stderr so command output on stdout stays clean.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	observability.InitLogger(os.Stderr, observability.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// newSource returns a fixture-backed source when fixturesDir is set,
// otherwise a live source using driver (or the configured driver when empty).
func newSource(cfg *config.Config, driver, fixturesDir string) (scrape.ProfileSource, error) {
	if fixturesDir != "" {
		return scrape.LoadStaticSource(fixturesDir)
	}

	if driver == "" {
		driver = cfg.BrowserDriver
	}
	renderer, err := fetch.NewRenderer(driver, cfg.NavigationTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return scrape.NewLiveSource(renderer), nil
}

// newGenerator builds the Gemini generator over the configured key pool.
func newGenerator(cfg *config.Config) *llm.Generator {
	llmConfig := llm.DefaultConfig().WithModel(cfg.Model)
	return llm.NewGenerator(llmConfig, llm.NewKeyPool(cfg.APIKeys))
}

// newRoaster wires a source and generator into the pipeline.
func newRoaster(cfg *config.Config, driver, fixturesDir string) (*pipeline.Roaster, error) {
	source, err := newSource(cfg, driver, fixturesDir)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRoaster(source, newGenerator(cfg)), nil
}
