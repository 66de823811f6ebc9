package textutil

import (
	"html"
	"regexp"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// DefaultWrapWidth matches the column width overviews are printed at.
const DefaultWrapWidth = 70

var (
	lineBreakTag = regexp.MustCompile(`(?i)<br\s*/?>`)
	markupTag    = regexp.MustCompile(`<[^>]*>`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// Wrap reflows text into lines no wider than width, breaking at word
// boundaries. Existing whitespace, including newlines, is collapsed first.
func Wrap(value string, width int) string {
	if width <= 0 {
		width = DefaultWrapWidth
	}
	flat := SingleLine(value)
	if flat == "" {
		return ""
	}
	wrapped := text.WrapSoft(flat, width)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

// StripMarkup removes the inline HTML AniList returns in descriptions. Line
// break tags become newlines; every other tag is dropped and entities are
// unescaped.
func StripMarkup(value string) string {
	value = lineBreakTag.ReplaceAllString(value, "\n")
	value = markupTag.ReplaceAllString(value, "")
	value = html.UnescapeString(value)
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = blankRuns.ReplaceAllString(value, "\n\n")
	return strings.TrimSpace(value)
}

// SingleLine collapses all whitespace runs, newlines included, into single
// spaces.
func SingleLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Truncate shortens value to at most limit runes, marking the cut with an
// ellipsis.
func Truncate(value string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}
