package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jonathan/instagram-roaster/internal/pipeline"
	"github.com/jonathan/instagram-roaster/internal/scrape"
	"github.com/jonathan/instagram-roaster/internal/server/middleware"
	"github.com/jonathan/instagram-roaster/internal/types"
)

// maxBodyBytes caps the /roast request body. jsonData is a small profile document.
const maxBodyBytes = 1 << 20

// Response messages.
const (
	msgForbidden         = "Forbidden"
	msgMissingParameters = "Missing required parameters"
	msgUsernameRequired  = "Username is required"
	msgProfileNotFound   = "Instagram profile not found"
	msgInternalError     = "Internal Server Error"
)

// blockedUserAgents are substrings of non-browser clients turned away from /roast.
// Trivially spoofed; it only keeps casual scripts out.
var blockedUserAgents = []string{"curl", "python", "Go-http-client"}

func isBlockedUserAgent(ua string) bool {
	for _, blocked := range blockedUserAgents {
		if strings.Contains(ua, blocked) {
			return true
		}
	}
	return false
}

// parseRoastRequest applies the user-agent filter and validates a roast request.
func parseRoastRequest(r *http.Request) (*types.RoastRequest, error) {
	if ua := r.UserAgent(); isBlockedUserAgent(ua) {
		return nil, &ErrForbiddenClient{UserAgent: ua}
	}

	req := decodeRoastBody(r)
	req.Username = r.URL.Query().Get("username")

	if err := req.Validate(); err != nil {
		return nil, &ErrValidation{Field: "username/language", Message: err.Error()}
	}
	return &req, nil
}

// decodeRoastBody reads the /roast body field by field, so one field of the
// wrong type does not discard the others. An unreadable body is an empty one.
func decodeRoastBody(r *http.Request) types.RoastRequest {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&fields); err != nil {
		return types.RoastRequest{}
	}

	req := types.RoastRequest{
		Model:    stringField(fields["model"]),
		Language: presentField(fields["language"]),
		APIKey:   stringField(fields["apiKey"]),
	}

	raw := fields["jsonData"]
	if data, ok := asString(raw); ok {
		req.JSONData = data
	} else if present(raw) {
		// Only a serialized document is accepted. Anything else is malformed
		// jsonData and the profile is scraped instead.
		slog.Warn("ignoring non-string jsonData", "request_id", middleware.GetRequestID(r))
	}
	return req
}

// asString reports raw's value when it is a JSON string.
func asString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// stringField returns raw's string value, or "" for any other type.
func stringField(raw json.RawMessage) string {
	s, _ := asString(raw)
	return s
}

// presentField returns a string value as is and the literal JSON of any other
// present value, so a non-string language still counts as supplied.
func presentField(raw json.RawMessage) string {
	if s, ok := asString(raw); ok {
		return s
	}
	if present(raw) {
		return string(raw)
	}
	return ""
}

// present reports whether raw holds a value other than null or false.
func present(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false":
		return false
	}
	return true
}

// requestErrorResponse answers a rejected roast request.
func (s *Server) requestErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var forbiddenErr *ErrForbiddenClient
	if errors.As(err, &forbiddenErr) {
		slog.Warn("blocked client", "request_id", middleware.GetRequestID(r), "user_agent", forbiddenErr.UserAgent)
		s.errorResponse(w, HTTPStatus(err), msgForbidden)
		return
	}
	s.errorResponse(w, HTTPStatus(err), msgMissingParameters)
}

func roastOptions(req *types.RoastRequest) pipeline.RoastOptions {
	return pipeline.RoastOptions{
		Username: req.Username,
		JSONData: req.JSONData,
		Language: types.ParseLanguage(req.Language),
		APIKey:   req.APIKey,
	}
}

// handleRoast scrapes (or accepts) a profile and returns a generated roast.
func (s *Server) handleRoast(w http.ResponseWriter, r *http.Request) {
	req, err := parseRoastRequest(r)
	if err != nil {
		s.requestErrorResponse(w, r, err)
		return
	}

	roast, err := s.roaster.Roast(r.Context(), roastOptions(req))
	if err != nil {
		s.jsonResponse(w, HTTPStatus(err), roastError(r, err))
		return
	}

	s.jsonResponse(w, http.StatusOK, types.RoastResponse{Roasting: roast})
}

// handleRoastStream runs a roast and streams step events, then the result.
func (s *Server) handleRoastStream(w http.ResponseWriter, r *http.Request) {
	req, err := parseRoastRequest(r)
	if err != nil {
		s.requestErrorResponse(w, r, err)
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	requestID := middleware.GetRequestID(r)

	opts := roastOptions(req)
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := stream.send(eventStep, event); err != nil {
			slog.Debug("failed to write progress event", "request_id", requestID, "error", err)
		}
	}

	roast, err := s.roaster.Roast(r.Context(), opts)
	if err != nil {
		err = stream.fail(roastError(r, err))
	} else {
		err = stream.complete(roast)
	}
	if err != nil {
		slog.Debug("failed to finish event stream", "request_id", requestID, "error", err)
	}
}

// roastError maps a pipeline error to a typed error body and logs it.
func roastError(r *http.Request, err error) types.ErrorResponse {
	message := err.Error()
	var scrapeErr *scrape.Error
	switch {
	case errors.Is(err, scrape.ErrProfileNotFound):
		message = msgProfileNotFound
	case errors.As(err, &scrapeErr):
		message = scrapeErr.Message
	}

	errType := ErrorType(err)
	slog.Error("error generating roast",
		"request_id", middleware.GetRequestID(r),
		"type", errType,
		"error", err,
	)

	return types.ErrorResponse{Error: message, Type: errType}
}

// handleScrape returns the extracted profile without generating anything.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		s.errorResponse(w, http.StatusBadRequest, msgUsernameRequired)
		return
	}

	profile, err := s.roaster.Scrape(r.Context(), username)
	if err != nil {
		var scrapeErr *scrape.Error
		switch {
		case errors.Is(err, scrape.ErrProfileNotFound):
			s.errorResponse(w, http.StatusNotFound, msgProfileNotFound)
		case errors.As(err, &scrapeErr):
			s.errorResponse(w, http.StatusInternalServerError, scrapeErr.Message)
		default:
			slog.Error("error scraping instagram profile", "request_id", middleware.GetRequestID(r), "error", err)
			s.errorResponse(w, http.StatusInternalServerError, msgInternalError)
		}
		return
	}

	s.jsonResponse(w, http.StatusOK, profile)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
