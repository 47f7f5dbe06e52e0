package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/chatlens/chatlens/internal/models"
)

// extractIMessage handles iMessage HTML exports. Every message container is
// either "received" or "sent"; anything else is skipped. Sent messages
// labelled "You" are rewritten to "Me" so senders stay consistent across
// exports.
func extractIMessage(doc *goquery.Document) []models.Message {
	var msgs []models.Message

	doc.Find("div.message").Each(func(_ int, div *goquery.Selection) {
		rec := div.Find("div.received").First()
		sent := div.Find("div.sent").First()

		var sender, timestamp, text string

		// The meta <p> only refines sender/timestamp; the bubble is read
		// regardless, so a container without one still emits.
		switch {
		case rec.Length() > 0:
			sender = "Unknown"
			if meta := rec.Find("p").First(); meta.Length() > 0 {
				if span := meta.Find("span.sender").First(); span.Length() > 0 {
					sender = strings.TrimSpace(span.Text())
				}
				if span := meta.Find("span.timestamp").First(); span.Length() > 0 {
					timestamp = strings.TrimSpace(span.Text())
				}
			}
			if bubble := rec.Find("span.bubble").First(); bubble.Length() > 0 {
				text = strings.TrimSpace(bubble.Text())
			}
		case sent.Length() > 0:
			sender = "Me"
			if meta := sent.Find("p").First(); meta.Length() > 0 {
				if span := meta.Find("span.sender").First(); span.Length() > 0 {
					if name := strings.TrimSpace(span.Text()); name != "You" {
						sender = name
					}
				}
				if span := meta.Find("span.timestamp").First(); span.Length() > 0 {
					timestamp = strings.TrimSpace(span.Text())
				}
			}
			if bubble := sent.Find("span.bubble").First(); bubble.Length() > 0 {
				text = strings.TrimSpace(bubble.Text())
			}
		default:
			return
		}

		if text != "" {
			msgs = append(msgs, models.Message{
				Source:    "iMessage",
				Timestamp: timestamp,
				Sender:    sender,
				Message:   text,
			})
		}
	})

	return msgs
}
