package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/chatlens/chatlens/internal/models"
)

// extractTelegram handles Telegram's "export chat history" HTML format.
// Telegram only labels the first message of a consecutive group with a
// from_name element, so the sender carries forward across the iteration.
func extractTelegram(doc *goquery.Document) []models.Message {
	var msgs []models.Message
	var lastSender string

	doc.Find("div.message").Each(func(_ int, div *goquery.Selection) {
		var timestamp string
		if ts := div.Find("div.pull_right.date.details").First(); ts.Length() > 0 {
			timestamp = ts.AttrOr("title", "")
		}

		sender := lastSender
		if name := div.Find("div.from_name").First(); name.Length() > 0 {
			sender = strings.TrimSpace(name.Text())
		}
		if sender != "" {
			lastSender = sender
		}

		var text string
		if txt := div.Find("div.text").First(); txt.Length() > 0 {
			text = strings.TrimSpace(txt.Text())
		}

		if text != "" && sender != "" {
			msgs = append(msgs, models.Message{
				Source:    "Telegram",
				Timestamp: timestamp,
				Sender:    sender,
				Message:   text,
			})
		}
	})

	return msgs
}
