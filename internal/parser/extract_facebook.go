package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/chatlens/chatlens/internal/models"
)

// extractFacebook handles the Facebook "download your information" HTML
// format. Timestamps live in a parallel list of containers paired with the
// message containers by index, not nested inside them.
func extractFacebook(doc *goquery.Document) []models.Message {
	var msgs []models.Message

	msgDivs := doc.Find("div._3-95._a6-g")
	tsDivs := doc.Find("div._3-94._a6-o")

	msgDivs.Each(func(i int, div *goquery.Selection) {
		var sender string
		if sd := div.Find("div._2ph_._a6-h._a6-i").First(); sd.Length() > 0 {
			sender = strings.TrimSpace(sd.Text())
		}
		if sender == "" {
			if sd := div.Find("div[data-tooltip-content]").First(); sd.Length() > 0 {
				sender = strings.TrimSpace(sd.Text())
			}
		}
		if sender == "" {
			return
		}

		var text string
		if cd := div.Find("div._2ph_._a6-p").First(); cd.Length() > 0 {
			text = nodeText(cd)
		}

		var timestamp string
		if i < tsDivs.Length() {
			tsDiv := tsDivs.Eq(i)
			if inner := tsDiv.Find("div._a72d").First(); inner.Length() > 0 {
				timestamp = strings.TrimSpace(inner.Text())
			} else {
				timestamp = strings.TrimSpace(tsDiv.Text())
			}
		}

		if text != "" {
			msgs = append(msgs, models.Message{
				Source:    "Facebook",
				Timestamp: timestamp,
				Sender:    sender,
				Message:   text,
			})
		}
	})

	return msgs
}
