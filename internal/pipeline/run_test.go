package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/instagram-roaster/internal/llm"
	"github.com/jonathan/instagram-roaster/internal/scrape"
	"github.com/jonathan/instagram-roaster/internal/types"
)

type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
	keys    []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt, apiKey string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.keys = append(g.keys, apiKey)
	return g.text, g.err
}

func fixtureSource(t *testing.T) *scrape.StaticSource {
	t.Helper()
	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join("..", "scrape", "testdata", name))
		require.NoError(t, err)
		return string(data)
	}
	return scrape.NewStaticSource(map[string]string{
		"janedoe":   read("profile.html"),
		"secretsam": read("private.html"),
		"ghost":     read("not_found.html"),
	})
}

func TestRoast_ScrapesWithoutJSONData(t *testing.T) {
	source := fixtureSource(t)
	gen := &fakeGenerator{text: "Nice coffee."}
	r := NewRoaster(source, gen)

	roast, err := r.Roast(context.Background(), RoastOptions{
		Username: "janedoe",
		Language: types.LanguageEnglish,
		APIKey:   "caller-key",
	})
	require.NoError(t, err)

	assert.Equal(t, "Nice coffee.", roast)
	assert.Equal(t, 1, source.Calls())
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], `"name":"Jane Doe"`)
	assert.Equal(t, []string{"caller-key"}, gen.keys)
}

func TestRoast_ValidJSONDataSkipsExtraction(t *testing.T) {
	source := fixtureSource(t)
	gen := &fakeGenerator{text: "ok"}
	r := NewRoaster(source, gen)

	_, err := r.Roast(context.Background(), RoastOptions{
		Username: "janedoe",
		JSONData: `{"username":"janedoe","bio":"Supplied bio","followers":"12"}`,
		Language: types.LanguageEnglish,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, source.Calls())
	assert.Contains(t, gen.prompts[0], `"bio":"Supplied bio"`)
	assert.Contains(t, gen.prompts[0], `"followers":12`)
}

func TestResolveProfile_LenientJSONDataSkipsExtraction(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
		wantBio  string
	}{
		{"empty lastActivity", `{"bio":"hi","lastActivity":""}`, "hi"},
		{"date-only lastActivity", `{"bio":"hi","lastActivity":"2024-08-10"}`, "hi"},
		{"free-text lastActivity", `{"bio":"hi","lastActivity":"yesterday"}`, "hi"},
		{"numeric lastActivity", `{"bio":"hi","lastActivity":1723248000}`, "hi"},
		{"null bio", `{"bio":null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := fixtureSource(t)
			r := NewRoaster(source, &fakeGenerator{})

			profile, err := r.ResolveProfile(context.Background(), "janedoe", tt.jsonData)
			require.NoError(t, err)

			assert.Equal(t, 0, source.Calls())
			assert.Equal(t, tt.wantBio, profile.Bio)
		})
	}
}

func TestRoast_InvalidJSONDataFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		jsonData string
	}{
		{"malformed", `{"bio": `},
		{"not an object", `["janedoe"]`},
		{"wrong bio type", `{"bio": 42}`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := fixtureSource(t)
			gen := &fakeGenerator{text: "ok"}
			r := NewRoaster(source, gen)

			_, err := r.Roast(context.Background(), RoastOptions{
				Username: "janedoe",
				JSONData: tt.jsonData,
				Language: types.LanguageAuto,
			})
			require.NoError(t, err)

			assert.Equal(t, 1, source.Calls())
			assert.Contains(t, gen.prompts[0], "Coffee first.")
		})
	}
}

func TestRoast_NotFound(t *testing.T) {
	gen := &fakeGenerator{}
	r := NewRoaster(fixtureSource(t), gen)

	_, err := r.Roast(context.Background(), RoastOptions{Username: "ghost", Language: types.LanguageEnglish})
	assert.ErrorIs(t, err, scrape.ErrProfileNotFound)
	assert.Empty(t, gen.prompts)
}

func TestRoast_ScrapeFailure(t *testing.T) {
	failing := &failingSource{err: &scrape.Error{Username: "janedoe", Message: "navigation timeout"}}
	gen := &fakeGenerator{}
	r := NewRoaster(failing, gen)

	_, err := r.Roast(context.Background(), RoastOptions{Username: "janedoe", Language: types.LanguageEnglish})

	var scrapeErr *scrape.Error
	require.True(t, errors.As(err, &scrapeErr))
	assert.Equal(t, "navigation timeout", scrapeErr.Message)
	assert.Empty(t, gen.prompts)
}

func TestRoast_GenerationFailure(t *testing.T) {
	genErr := &llm.GenerationError{Message: "quota exceeded"}
	r := NewRoaster(fixtureSource(t), &fakeGenerator{err: genErr})

	_, err := r.Roast(context.Background(), RoastOptions{Username: "janedoe", Language: types.LanguageEnglish})
	assert.ErrorIs(t, err, genErr)
}

func TestRoast_AutoLanguage(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	r := NewRoaster(fixtureSource(t), gen)

	_, err := r.Roast(context.Background(), RoastOptions{Username: "secretsam", Language: types.LanguageAuto})
	require.NoError(t, err)
	_, err = r.Roast(context.Background(), RoastOptions{Username: "janedoe", Language: types.LanguageAuto})
	require.NoError(t, err)

	require.Len(t, gen.prompts, 2)
	assert.True(t, strings.HasPrefix(gen.prompts[0], "Berikan roasting"))
	assert.True(t, strings.HasPrefix(gen.prompts[1], "Give a short"))
}

func TestRoast_IgnoresCancellation(t *testing.T) {
	source := fixtureSource(t)
	r := NewRoaster(source, &fakeGenerator{text: "ok"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	roast, err := r.Roast(ctx, RoastOptions{Username: "janedoe", Language: types.LanguageEnglish})
	require.NoError(t, err)
	assert.Equal(t, "ok", roast)
}

func TestRoast_Progress(t *testing.T) {
	var events []ProgressEvent
	r := NewRoaster(fixtureSource(t), &fakeGenerator{text: "ok"})

	_, err := r.Roast(context.Background(), RoastOptions{
		Username:   "janedoe",
		Language:   types.LanguageEnglish,
		OnProgress: func(e ProgressEvent) {
			events = append(events, e)
		},
	})
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, StepResolveProfile, events[0].Step)
	assert.Equal(t, StepBuildPrompt, events[1].Step)
	assert.Equal(t, "Built english prompt", events[1].Message)
	assert.Equal(t, StepGenerate, events[2].Step)
	assert.NotEmpty(t, events[0].RunID)
	assert.Equal(t, events[0].RunID, events[2].RunID)
}

func TestScrape(t *testing.T) {
	source := fixtureSource(t)
	r := NewRoaster(source, nil)

	profile, err := r.Scrape(context.Background(), "janedoe")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(profile.PostImages), types.MaxPostImages)

	_, err = r.Scrape(context.Background(), "ghost")
	assert.ErrorIs(t, err, scrape.ErrProfileNotFound)
}

func TestDecodeProfile_Normalizes(t *testing.T) {
	images := make([]string, 15)
	for i := range images {
		images[i] = `"https://cdn.example.com/` + string(rune('a'+i)) + `.jpg"`
	}
	jsonData := `{"bio":"x","posts":-4,"postImages":[` + strings.Join(images, ",") + `]}`

	profile, err := DecodeProfile(jsonData)
	require.NoError(t, err)

	assert.Len(t, profile.PostImages, types.MaxPostImages)
	assert.Zero(t, profile.Posts)
	assert.Zero(t, profile.Followers)
}

type failingSource struct {
	err error
}

func (s *failingSource) Extract(context.Context, string) (*types.ProfileData, error) {
	return nil, s.err
}
