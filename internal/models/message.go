package models

// Platform identifies the chat application a document was exported from.
type Platform string

// Platform constants define the closed set of detectable export formats.
const (
	PlatformTelegram         Platform = "telegram"
	PlatformFacebook         Platform = "facebook"
	PlatformInstagram        Platform = "instagram"
	PlatformIMessage         Platform = "imessage"
	PlatformDiscord          Platform = "discord"
	PlatformDiscordJSONEmbed Platform = "discord_json_embed"
	PlatformUnknown          Platform = "unknown"
)

// Message is a single extracted chat message.
//
// Timestamp holds the extractor's verbatim text (possibly empty) until the
// pipeline rewrites it into the canonical format; records whose timestamp
// cannot be parsed never reach the final corpus.
type Message struct {
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
}

// Statistics summarizes a finished parse run.
type Statistics struct {
	TotalMessages     int      `json:"total_messages"`
	UniqueSenders     int      `json:"unique_senders"`
	PlatformsDetected []string `json:"platforms_detected"`
	FileProcessed     string   `json:"file_processed"`
}

// ParseResult is the complete output of one run: the chronologically
// ordered corpus plus derived statistics.
type ParseResult struct {
	Messages   []Message  `json:"messages"`
	Statistics Statistics `json:"statistics"`
}
