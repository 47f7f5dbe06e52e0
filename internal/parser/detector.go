package parser

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/chatlens/chatlens/internal/models"
)

// discordEmbedPattern matches the inline `let messages = [` declaration
// Discord DM exporters emit into a script tag.
var discordEmbedPattern = regexp.MustCompile(`let\s+messages\s*=\s*\[`)

// DetectPlatform classifies a parsed HTML document into a platform tag.
// Checks run in a fixed priority order and the first match wins; order
// matters because the later selectors are loose enough to misfire on
// documents the earlier ones identify precisely.
func DetectPlatform(doc *goquery.Document) models.Platform {
	embed := false
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if discordEmbedPattern.MatchString(s.Text()) {
			embed = true
			return false
		}
		return true
	})
	if embed {
		return models.PlatformDiscordJSONEmbed
	}

	if doc.Find("div.iMessage").Length() > 0 {
		return models.PlatformIMessage
	}

	if doc.Find("div.history").Length() > 0 && doc.Find("div.message").Length() > 0 {
		return models.PlatformTelegram
	}

	if doc.Find("div.pre--content").Length() > 0 || doc.Find("div.chat-msg").Length() > 0 {
		return models.PlatformDiscord
	}

	if doc.Find("div._2pim").Length() > 0 {
		return models.PlatformInstagram
	}

	if doc.Find("div._2ph_").Length() > 0 {
		return models.PlatformFacebook
	}

	return models.PlatformUnknown
}
