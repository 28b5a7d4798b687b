// Package pipeline provides the high-level orchestration for producing a roast:
// resolve the profile, build the prompt, generate the text.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/instagram-roaster/internal/prompts"
	"github.com/jonathan/instagram-roaster/internal/schemas"
	"github.com/jonathan/instagram-roaster/internal/scrape"
	"github.com/jonathan/instagram-roaster/internal/types"
)

// Step names reported through ProgressEvent.
const (
	StepResolveProfile = "resolve_profile"
	StepBuildPrompt    = "build_prompt"
	StepGenerate       = "generate"
)

// Step categories.
const (
	CategoryProfile    = "profile"
	CategoryGeneration = "generation"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Generator produces text for a prompt. apiKey, when set, overrides the configured credentials.
type Generator interface {
	Generate(ctx context.Context, prompt, apiKey string) (string, error)
}

// RoastOptions holds the inputs of a single roast.
type RoastOptions struct {
	Username string
	JSONData string // serialized ProfileData supplied by the caller; optional
	Language types.Language
	APIKey   string

	OnProgress ProgressCallback
}

// Roaster composes profile resolution, prompt building and generation.
// It holds no per-request state and is safe for concurrent use.
type Roaster struct {
	source    scrape.ProfileSource
	generator Generator
}

// NewRoaster creates a Roaster.
func NewRoaster(source scrape.ProfileSource, generator Generator) *Roaster {
	return &Roaster{source: source, generator: generator}
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RoastOptions, runID, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    runID,
			Content:  content,
		})
	}
}

// Roast resolves the profile and generates a roast for it.
// A client going away does not abort the browser session or the upstream call,
// so the context is detached from cancellation.
//
// Errors are returned unwrapped so callers can classify them:
// scrape.ErrProfileNotFound, *scrape.Error, *llm.GenerationError or anything else.
func (r *Roaster) Roast(ctx context.Context, opts RoastOptions) (string, error) {
	ctx = context.WithoutCancel(ctx)
	runID := uuid.NewString()
	logger := slog.With("run_id", runID, "username", opts.Username)

	profile, err := r.ResolveProfile(ctx, opts.Username, opts.JSONData)
	if err != nil {
		logger.Error("failed to resolve profile", "error", err)
		return "", err
	}
	emitProgress(&opts, runID, StepResolveProfile, CategoryProfile,
		fmt.Sprintf("Resolved profile @%s", profile.Username), profile)

	prompt, err := prompts.BuildRoast(opts.Username, profile, opts.Language)
	if err != nil {
		logger.Error("failed to build prompt", "error", err)
		return "", err
	}
	lang := prompts.ResolveLanguage(opts.Language, profile)
	emitProgress(&opts, runID, StepBuildPrompt, CategoryGeneration,
		fmt.Sprintf("Built %s prompt", lang), nil)

	roast, err := r.generator.Generate(ctx, prompt, opts.APIKey)
	if err != nil {
		logger.Error("error generating roast", "error", err)
		return "", err
	}
	emitProgress(&opts, runID, StepGenerate, CategoryGeneration, "Generated roast", nil)

	logger.Info("roast generated", "language", lang, "length", len(roast))
	return roast, nil
}

// Scrape extracts a profile without generating anything.
func (r *Roaster) Scrape(ctx context.Context, username string) (*types.ProfileData, error) {
	return r.source.Extract(context.WithoutCancel(ctx), username)
}

// ResolveProfile returns the caller-supplied profile when jsonData decodes,
// and falls back to extraction otherwise. Bad jsonData is never an error.
func (r *Roaster) ResolveProfile(ctx context.Context, username, jsonData string) (*types.ProfileData, error) {
	if strings.TrimSpace(jsonData) != "" {
		profile, err := DecodeProfile(jsonData)
		if err == nil {
			return profile, nil
		}
		slog.Warn("discarding invalid jsonData, scraping instead", "username", username, "error", err)
	}

	return r.source.Extract(ctx, username)
}

// DecodeProfile validates and decodes caller-supplied profile JSON.
func DecodeProfile(jsonData string) (*types.ProfileData, error) {
	if err := schemas.ValidateProfileJSON([]byte(jsonData)); err != nil {
		return nil, err
	}

	var profile types.ProfileData
	if err := json.Unmarshal([]byte(jsonData), &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	profile.Normalize()
	return &profile, nil
}
