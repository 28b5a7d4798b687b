// Package prompts holds the roast prompt templates and renders them for a profile.
// Templates live in JSON files embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var defaultCatalog = NewCatalog(promptFiles)

// Catalog reads prompt files (JSON objects of key to template) from a
// filesystem and keeps each parsed file for the life of the catalog.
type Catalog struct {
	fsys  fs.FS
	mu    sync.RWMutex
	files map[string]map[string]string
}

// NewCatalog returns a catalog over fsys.
func NewCatalog(fsys fs.FS) *Catalog {
	return &Catalog{fsys: fsys, files: make(map[string]map[string]string)}
}

// Get returns the template stored under key in filename (e.g. "roast.json").
func (c *Catalog) Get(filename, key string) (string, error) {
	templates, err := c.load(filename)
	if err != nil {
		return "", err
	}

	template, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return template, nil
}

// List returns the keys defined in filename, sorted.
func (c *Catalog) List(filename string) ([]string, error) {
	templates, err := c.load(filename)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(templates))
	for key := range templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *Catalog) load(filename string) (map[string]string, error) {
	c.mu.RLock()
	templates, ok := c.files[filename]
	c.mu.RUnlock()
	if ok {
		return templates, nil
	}

	data, err := fs.ReadFile(c.fsys, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	c.mu.Lock()
	c.files[filename] = templates
	c.mu.Unlock()
	return templates, nil
}

// Get returns an embedded template.
func Get(filename, key string) (string, error) {
	return defaultCatalog.Get(filename, key)
}

// List returns the keys of an embedded prompt file.
func List(filename string) ([]string, error) {
	return defaultCatalog.List(filename)
}

// Format replaces {{.Key}} placeholders with values from data in a single pass,
// so values that themselves look like placeholders are left untouched.
func Format(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
