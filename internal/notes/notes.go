// Package notes cleans free-text interaction notes before they are stored.
package notes

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockSelector = "p, div, li, tr, h1, h2, h3, h4, h5, h6, blockquote"

// markup matches the tags and entities rich-text fields paste in. A bare
// "<" or "&" in typed text does not match, so such notes are kept verbatim.
var markup = regexp.MustCompile(`(?i)</?(p|div|br|span|b|i|u|em|strong|font|a|ul|ol|li|table|tbody|tr|td|th|h[1-6]|blockquote|script|style)(\s[^<>]*)?/?>|&(#\d+|#x[0-9a-f]+|[a-z]+);`)

// PlainText strips markup pasted from rich-text fields, keeping one line per
// block element and collapsing runs of whitespace. Text without markup is
// only tidied.
func PlainText(raw string) string {
	if !markup.MatchString(raw) {
		return tidy(raw)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return tidy(raw)
	}

	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return tidy(doc.Text())
}

func tidy(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
