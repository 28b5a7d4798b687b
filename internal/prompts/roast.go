package prompts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/instagram-roaster/internal/types"
)

// Roast prompt file and keys.
const (
	RoastFile          = "roast.json"
	RoastKeyEnglish    = "roast-english"
	RoastKeyIndonesian = "roast-indonesian"
)

// IndonesianMarker in a bio selects the Indonesian template under LanguageAuto.
// This is a substring check, not language detection.
const IndonesianMarker = "Indonesia"

// ResolveLanguage turns LanguageAuto into a concrete language using the profile bio.
func ResolveLanguage(lang types.Language, profile *types.ProfileData) types.Language {
	switch lang {
	case types.LanguageEnglish, types.LanguageIndonesian:
		return lang
	}
	if profile != nil && strings.Contains(profile.Bio, IndonesianMarker) {
		return types.LanguageIndonesian
	}
	return types.LanguageEnglish
}

// BuildRoast renders the roast prompt for a profile. It is deterministic:
// the same inputs always produce the same prompt.
func BuildRoast(username string, profile *types.ProfileData, lang types.Language) (string, error) {
	key := RoastKeyEnglish
	if ResolveLanguage(lang, profile) == types.LanguageIndonesian {
		key = RoastKeyIndonesian
	}

	template, err := Get(RoastFile, key)
	if err != nil {
		return "", err
	}

	serialized, err := serializeProfile(profile)
	if err != nil {
		return "", err
	}

	return Format(template, map[string]string{
		"Username": username,
		"Profile":  serialized,
	}), nil
}

// serializeProfile renders the profile as compact JSON without HTML escaping.
func serializeProfile(profile *types.ProfileData) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(profile); err != nil {
		return "", fmt.Errorf("failed to serialize profile: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
