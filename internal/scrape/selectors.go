package scrape

// Selectors locate profile fields in an Instagram profile document.
// The bio selector is tied to Instagram's generated CSS class names and is
// the first thing to break when the site ships new markup.
type Selectors struct {
	NotFound      string // present only on the "user not found" page
	Title         string // display name lives here, followed by NameDelimiter
	URL           string // canonical profile URL
	Description   string // "N Followers, N Following, N Posts - ..."
	Bio           string
	PostImages    string
	NameDelimiter string
	PrivateMarker string // body text shown on private accounts
}

// DefaultSelectors returns the selectors for the current Instagram markup.
func DefaultSelectors() Selectors {
	return Selectors{
		NotFound:      `div[data-testid="empty-user-container"]`,
		Title:         `meta[property="og:title"]`,
		URL:           `meta[property="og:url"]`,
		Description:   `meta[name="description"]`,
		Bio:           `div.x7a106z span._ap3a._aaco._aacu._aacx._aad7._aade`,
		PostImages:    `article img`,
		NameDelimiter: " (@",
		PrivateMarker: "This Account is Private",
	}
}
