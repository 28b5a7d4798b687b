// Package server provides the HTTP API for the Instagram roaster.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/instagram-roaster/internal/llm"
	"github.com/jonathan/instagram-roaster/internal/scrape"
)

// Error types reported in the "type" field of roast error responses.
const (
	ErrorTypeInstagram = "Instagram"
	ErrorTypeScraping  = "Scraping"
	ErrorTypeAI        = "AI"
	ErrorTypeServer    = "Server"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrForbiddenClient indicates a request from a blocked user agent
type ErrForbiddenClient struct {
	UserAgent string
}

func (e *ErrForbiddenClient) Error() string {
	return fmt.Sprintf("forbidden client: %s", e.UserAgent)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		forbiddenErr  *ErrForbiddenClient
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &forbiddenErr):
		return http.StatusForbidden
	case errors.Is(err, scrape.ErrProfileNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorType classifies a roast failure for the response "type" field.
// Request errors (400, 403) have no type.
func ErrorType(err error) string {
	var (
		validationErr *ErrValidation
		forbiddenErr  *ErrForbiddenClient
		scrapeErr     *scrape.Error
		genErr        *llm.GenerationError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &forbiddenErr):
		return ""
	case errors.Is(err, scrape.ErrProfileNotFound):
		return ErrorTypeInstagram
	case errors.As(err, &scrapeErr):
		return ErrorTypeScraping
	case errors.As(err, &genErr):
		return ErrorTypeAI
	default:
		return ErrorTypeServer
	}
}
