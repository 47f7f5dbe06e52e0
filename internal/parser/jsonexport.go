package parser

import (
	"strconv"

	"github.com/chatlens/chatlens/internal/models"
)

// ParseGenericJSON maps assorted decoded JSON export shapes into raw message
// records. The top-level value may be the message list itself, an object
// wrapping the list under a known key, or a single record. Elements matching
// no known shape are skipped.
func ParseGenericJSON(data any) []models.Message {
	list, ok := data.([]any)
	if !ok {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil
		}
		for _, key := range []string{"messages", "conversation", "chat_history"} {
			if nested, ok := obj[key].([]any); ok {
				list = nested
				break
			}
		}
		if list == nil {
			if hasKeys(obj, "Date", "From", "Content") ||
				hasKeys(obj, "date", "from", "content") ||
				hasKeys(obj, "timestamp", "author", "content") {
				list = []any{obj}
			} else {
				return nil
			}
		}
	}

	var msgs []models.Message
	for _, elem := range list {
		msg, ok := elem.(map[string]any)
		if !ok {
			continue
		}

		// Shapes are tried in a fixed order; the first match wins.
		switch {
		case hasKeys(msg, "Date", "From", "Content"):
			msgs = append(msgs, models.Message{
				Source:    "TikTok",
				Timestamp: stringify(msg["Date"]),
				Sender:    stringify(msg["From"]),
				Message:   stringify(msg["Content"]),
			})
		case hasKeys(msg, "date", "from", "content"):
			msgs = append(msgs, models.Message{
				Source:    "TikTok",
				Timestamp: stringify(msg["date"]),
				Sender:    stringify(msg["from"]),
				Message:   stringify(msg["content"]),
			})
		case hasKeys(msg, "timestamp", "author", "content") && isObject(msg["author"]):
			author := msg["author"].(map[string]any)
			sender := firstString(author, "username", "name", "From")
			if sender == "" {
				sender = "Unknown"
			}
			msgs = append(msgs, models.Message{
				Source:    "Discord (JSON)",
				Timestamp: stringify(msg["timestamp"]),
				Sender:    sender,
				Message:   stringify(msg["content"]),
			})
		case hasKeys(msg, "sender", "message", "timestamp"):
			source := stringify(msg["source"])
			if source == "" {
				source = "Generic JSON"
			}
			msgs = append(msgs, models.Message{
				Source:    source,
				Timestamp: stringify(msg["timestamp"]),
				Sender:    stringify(msg["sender"]),
				Message:   stringify(msg["message"]),
			})
		}
	}
	return msgs
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

func isObject(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// firstString returns the first non-empty string value among the keys.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringify(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// stringify coerces a decoded JSON scalar to its textual form; nil and
// missing values become the empty string.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
