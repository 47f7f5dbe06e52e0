package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/chatlens/chatlens/internal/models"
)

// extractInstagram handles Instagram data-export HTML. Instagram has shipped
// several markup generations, so container, sender, content and timestamp
// lookups each walk an ordered candidate list from most to least specific.
func extractInstagram(doc *goquery.Document) []models.Message {
	var msgs []models.Message

	containers := doc.Find("div.pam._3-95._2ph-._a6-g.uiBoxWhite.noborder, div._4tsk")
	if containers.Length() == 0 {
		containers = doc.Find(`div[class*="message"], div[class*="msg"]`)
	}

	containers.Each(func(_ int, container *goquery.Selection) {
		var sender string
		if sd := firstOf(container,
			"div._3-95._2pim._a6-h._a6-i",
			"div._2pim._a6-h._a6-i",
			`div[class*="sender"]`,
			`div[class*="name"]`,
		); sd != nil {
			sender = strings.TrimSpace(sd.Text())
		}
		if sender == "" {
			return
		}

		var text string
		if cd := firstOf(container,
			"div._3-95._a6-p",
			"div._a6-p",
			`div[class*="content"]`,
		); cd != nil {
			text = nodeText(cd)
		}

		var timestamp string
		if td := firstOf(container,
			"div._3-94._a6-o",
			`div[class*="timestamp"]`,
		); td != nil {
			timestamp = strings.TrimSpace(td.Text())
		}

		if text != "" {
			msgs = append(msgs, models.Message{
				Source:    "Instagram",
				Timestamp: timestamp,
				Sender:    sender,
				Message:   text,
			})
		}
	})

	return msgs
}
