//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// Language selects the roast prompt template.
type Language string

const (
	// LanguageEnglish always uses the English template
	LanguageEnglish Language = "english"
	// LanguageIndonesian always uses the Indonesian template
	LanguageIndonesian Language = "indonesian"
	// LanguageAuto picks a template from the profile bio
	LanguageAuto Language = "auto"
)

// ParseLanguage maps the request's language field onto a Language. Matching
// is exact: any other value, including "English", selects LanguageAuto.
func ParseLanguage(s string) Language {
	switch s {
	case "english":
		return LanguageEnglish
	case "indonesia", "indonesian":
		return LanguageIndonesian
	default:
		return LanguageAuto
	}
}

// RoastRequest is the input of POST /roast.
// Username comes from the query string, the rest from the JSON body.
type RoastRequest struct {
	Username string `json:"-" validate:"required"`
	JSONData string `json:"jsonData,omitempty"`
	Model    string `json:"model,omitempty"` // accepted for compatibility, not used
	Language string `json:"language" validate:"required"`
	APIKey   string `json:"apiKey,omitempty"`
}

// Validate validates the RoastRequest using the validator.
func (r *RoastRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// RoastResponse is the successful response of POST /roast.
type RoastResponse struct {
	Roasting string `json:"roasting"`
}

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}
