// Package types provides type definitions for structured data used throughout the roaster.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxPostImages is the maximum number of post thumbnails kept on a profile.
const MaxPostImages = 10

// ProfileData holds the public attributes of an Instagram profile.
// It is built per request, either by scraping or from caller-supplied JSON.
type ProfileData struct {
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Bio          string    `json:"bio"`
	Followers    Count     `json:"followers"`
	Following    Count     `json:"following"`
	Posts        Count     `json:"posts"`
	IsPrivate    bool      `json:"isPrivate"`
	PostImages   []string  `json:"postImages"`
	LastActivity time.Time `json:"lastActivity"` // time of extraction, not of account activity
}

// timestampLayouts are the lastActivity formats accepted from callers.
var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// UnmarshalJSON implements json.Unmarshaler. lastActivity is diagnostic only,
// so a value in an unknown format or of the wrong type decodes to the zero time.
func (p *ProfileData) UnmarshalJSON(data []byte) error {
	type plain ProfileData
	aux := struct {
		*plain
		LastActivity json.RawMessage `json:"lastActivity"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.LastActivity = parseTimestamp(aux.LastActivity)
	return nil
}

func parseTimestamp(raw json.RawMessage) time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Normalize enforces the profile invariants after decoding untrusted input.
func (p *ProfileData) Normalize() {
	if len(p.PostImages) > MaxPostImages {
		p.PostImages = p.PostImages[:MaxPostImages]
	}
	if p.PostImages == nil {
		p.PostImages = []string{}
	}
	for _, c := range []*Count{&p.Followers, &p.Following, &p.Posts} {
		if *c < 0 {
			*c = 0
		}
	}
}

// Count is a non-negative counter that decodes leniently.
// It accepts JSON numbers and numeric strings ("1234", "1,234"); anything else decodes to 0.
type Count int

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(data)
	}

	*c = ParseCount(raw)
	return nil
}

// ParseCount parses a counter from text, returning 0 when it cannot be parsed.
func ParseCount(s string) Count {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0
		}
		return Count(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return CountFromFloat(f)
	}
	return 0
}

// CountFromFloat truncates f to a Count, clamping to [0, math.MaxInt].
func CountFromFloat(f float64) Count {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= math.MaxInt:
		return Count(math.MaxInt)
	default:
		return Count(int(f))
	}
}
