package scrape

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/instagram-roaster/internal/types"
)

// profileHost precedes the username in the canonical profile URL.
const profileHost = "instagram.com/"

var (
	followersPattern = countPattern("Followers")
	followingPattern = countPattern("Following")
	postsPattern     = countPattern("Posts")
)

// countPattern matches "1,234 Followers" or "1.2M Followers".
func countPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(\d[\d,.]*)([KkMm]?)\s+` + label)
}

// Parse extracts a profile from a rendered profile document.
// It returns ErrProfileNotFound when the document is the "user not found" page.
// now is recorded as the profile's LastActivity.
func Parse(html string, sel Selectors, now time.Time) (*types.ProfileData, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	if doc.Find(sel.NotFound).Length() > 0 {
		return nil, ErrProfileNotFound
	}

	description := metaContent(doc, sel.Description)

	profile := &types.ProfileData{
		Username:     usernameFromURL(metaContent(doc, sel.URL)),
		Name:         nameFromTitle(metaContent(doc, sel.Title), sel.NameDelimiter),
		Bio:          strings.TrimSpace(doc.Find(sel.Bio).First().Text()),
		Followers:    ParseStat(description, followersPattern),
		Following:    ParseStat(description, followingPattern),
		Posts:        ParseStat(description, postsPattern),
		IsPrivate:    strings.Contains(doc.Find("body").Text(), sel.PrivateMarker),
		PostImages:   postImages(doc, sel.PostImages),
		LastActivity: now.UTC(),
	}

	return profile, nil
}

// metaContent returns the content attribute of the first element matching selector.
func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// nameFromTitle drops everything from the delimiter on ("Jane (@jane) • Instagram").
func nameFromTitle(title, delimiter string) string {
	if delimiter == "" {
		return title
	}
	name, _, _ := strings.Cut(title, delimiter)
	return strings.TrimSpace(name)
}

// usernameFromURL extracts the path segment after instagram.com/.
func usernameFromURL(profileURL string) string {
	_, after, found := strings.Cut(profileURL, profileHost)
	if !found {
		return ""
	}
	if i := strings.IndexAny(after, "?#"); i >= 0 {
		after = after[:i]
	}
	return strings.ReplaceAll(after, "/", "")
}

// postImages collects image sources in document order, at most types.MaxPostImages.
func postImages(doc *goquery.Document, selector string) []string {
	images := []string{}
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if src, ok := s.Attr("src"); ok && src != "" {
			images = append(images, src)
		}
		return len(images) < types.MaxPostImages
	})
	return images
}

// ParseStat applies a count pattern to the description text, returning 0 when absent.
func ParseStat(description string, pattern *regexp.Regexp) types.Count {
	m := pattern.FindStringSubmatch(description)
	if m == nil {
		return 0
	}

	number, suffix := strings.ReplaceAll(m[1], ",", ""), strings.ToUpper(m[2])
	if suffix == "" {
		return types.ParseCount(number)
	}

	f, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0
	}
	switch suffix {
	case "K":
		f *= 1_000
	case "M":
		f *= 1_000_000
	}
	return types.CountFromFloat(math.Round(f))
}
