package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/chatlens/chatlens/internal/models"
)

// extractFunc turns a parsed HTML document into raw message records.
// Extractors are total over malformed structure: missing sub-elements yield
// empty fields or skipped records, never a failure of the whole document.
type extractFunc func(*goquery.Document) []models.Message

// extractors is the closed platform registry. The platform set is fixed, so
// dispatch is a map over the enum rather than an open plugin registry.
var extractors = map[models.Platform]extractFunc{
	models.PlatformTelegram:         extractTelegram,
	models.PlatformFacebook:         extractFacebook,
	models.PlatformInstagram:        extractInstagram,
	models.PlatformIMessage:         extractIMessage,
	models.PlatformDiscord:          extractDiscordHTML,
	models.PlatformDiscordJSONEmbed: extractDiscordJSONEmbed,
}

// Extract runs the extractor registered for the platform. Unknown platforms
// yield no records.
func Extract(platform models.Platform, doc *goquery.Document) []models.Message {
	fn, ok := extractors[platform]
	if !ok {
		return nil
	}
	return fn(doc)
}

// firstOf returns the first selector that matches anything inside the
// selection. Candidate order encodes precedence between legacy and current
// export layouts, so it must be evaluated left to right.
func firstOf(s *goquery.Selection, selectors ...string) *goquery.Selection {
	for _, sel := range selectors {
		if found := s.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// nodeText returns the trimmed text of a content node's direct text
// children, falling back to the first non-empty direct-child p/span/div.
// Only the node's own text counts for the first attempt: a container whose
// text lives in child elements must yield the first child's text, not the
// whole subtree concatenated.
func nodeText(s *goquery.Selection) string {
	var direct strings.Builder
	for _, node := range s.Nodes {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				direct.WriteString(child.Data)
			}
		}
	}
	if text := strings.TrimSpace(direct.String()); text != "" {
		return text
	}

	var text string
	s.ChildrenFiltered("p, span, div").EachWithBreak(func(_ int, tag *goquery.Selection) bool {
		if content := strings.TrimSpace(tag.Text()); content != "" {
			text = content
			return false
		}
		return true
	})
	return text
}
