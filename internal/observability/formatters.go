// Package observability provides logging, metrics and formatted CLI output.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/instagram-roaster/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfile outputs a human-readable summary of a scraped profile.
func (p *Printer) PrintProfile(profile *types.ProfileData) {
	if profile == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Username:  @%s\n", profile.Username))
	sb.WriteString(fmt.Sprintf("Name:      %s\n", profile.Name))
	sb.WriteString(fmt.Sprintf("Followers: %d\n", profile.Followers))
	sb.WriteString(fmt.Sprintf("Following: %d\n", profile.Following))
	sb.WriteString(fmt.Sprintf("Posts:     %d\n", profile.Posts))
	if profile.IsPrivate {
		sb.WriteString("Private:   yes\n")
	}

	if profile.Bio != "" {
		sb.WriteString("\nBio:\n")
		for _, line := range strings.Split(profile.Bio, "\n") {
			sb.WriteString(fmt.Sprintf("  %s\n", line))
		}
	}

	if len(profile.PostImages) > 0 {
		sb.WriteString(fmt.Sprintf("\nPost images: %d\n", len(profile.PostImages)))
		count := min(len(profile.PostImages), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", profile.PostImages[i]))
		}
		if len(profile.PostImages) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(profile.PostImages)-maxItemsToShow))
		}
	}

	p.printBox("INSTAGRAM PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRoast outputs a generated roast, wrapped to the box width.
func (p *Printer) PrintRoast(username string, roast string) {
	if strings.TrimSpace(roast) == "" {
		return
	}
	p.printBox(fmt.Sprintf("ROAST FOR @%s", username), wrapText(strings.TrimSpace(roast), boxWidth-4))
}

// wrapText wraps text at word boundaries so each line fits in width runes.
func wrapText(text string, width int) string {
	var out []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if len([]rune(line))+1+len([]rune(word)) > width {
				out = append(out, line)
				line = word
				continue
			}
			line += " " + word
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
