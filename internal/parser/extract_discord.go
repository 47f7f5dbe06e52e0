package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/chatlens/chatlens/internal/models"
)

// extractDiscordHTML handles third-party Discord HTML exports built around
// chat-msg containers. The date element repeats the sender name, which is
// stripped back out of the timestamp text.
func extractDiscordHTML(doc *goquery.Document) []models.Message {
	var msgs []models.Message

	doc.Find("div.chat-msg").Each(func(_ int, div *goquery.Selection) {
		sender := "Unknown"
		var timestamp string

		if prof := div.Find("div.chat-msg-profile").First(); prof.Length() > 0 {
			if dateDiv := prof.Find("div.chat-msg-date").First(); dateDiv.Length() > 0 {
				if span := dateDiv.Find("span").First(); span.Length() > 0 {
					sender = strings.TrimSpace(span.Text())
					timestamp = strings.TrimSpace(
						strings.ReplaceAll(strings.TrimSpace(dateDiv.Text()), sender, ""))
				}
			}
		}

		var text string
		if td := div.Find("div.chat-msg-text").First(); td.Length() > 0 {
			text = strings.TrimSpace(td.Text())
		}

		if text != "" {
			msgs = append(msgs, models.Message{
				Source:    "Discord",
				Timestamp: timestamp,
				Sender:    sender,
				Message:   text,
			})
		}
	})

	return msgs
}

// discordEmbedAssign locates the `let messages =` assignment in a script tag
// of a Discord DM export. The array itself is read with a JSON decoder from
// that position, so the statement needs no terminating semicolon and nested
// brackets inside the array cannot cut the match short.
var discordEmbedAssign = regexp.MustCompile(`let\s+messages\s*=`)

type discordEmbedMessage struct {
	Timestamp string `json:"timestamp"`
	Content   string `json:"content"`
	Author    struct {
		Username string `json:"username"`
	} `json:"author"`
	StickerItems []struct {
		Name string `json:"name"`
	} `json:"sticker_items"`
	Embeds []struct {
		Description string `json:"description"`
	} `json:"embeds"`
}

// extractDiscordJSONEmbed pulls the message array out of the first script
// that declares it and decodes it as JSON. Scanning stops after the first
// script that decodes successfully; scripts that match but fail to decode
// are skipped.
func extractDiscordJSONEmbed(doc *goquery.Document) []models.Message {
	var msgs []models.Message

	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		script := s.Text()
		loc := discordEmbedAssign.FindStringIndex(script)
		if loc == nil {
			return true
		}

		var data []discordEmbedMessage
		if err := json.NewDecoder(strings.NewReader(script[loc[1]:])).Decode(&data); err != nil {
			return true
		}

		for _, msg := range data {
			text := msg.Content
			if text == "" {
				switch {
				case len(msg.StickerItems) > 0 && msg.StickerItems[0].Name != "":
					text = "Sticker: '" + msg.StickerItems[0].Name + "'"
				case len(msg.Embeds) > 0 && msg.Embeds[0].Description != "":
					text = msg.Embeds[0].Description
				}
			}

			if msg.Author.Username != "" && text != "" {
				msgs = append(msgs, models.Message{
					Source:    "Discord",
					Timestamp: msg.Timestamp,
					Sender:    msg.Author.Username,
					Message:   strings.TrimSpace(text),
				})
			}
		}
		return false
	})

	return msgs
}
