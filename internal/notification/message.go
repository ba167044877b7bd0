package notification

import "time"

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outgoing email. Body is rendered HTML.
type Message struct {
	From        string
	To          []string
	Cc          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Receipt struct {
	MessageID string
	Attempts  int
	SentAt    time.Time
}
