package mail

import "context"

// Message is one outbound email. HTML is optional; when set it is attached
// as an alternative body.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Receipt reports delivery metadata for a sent message.
type Receipt struct {
	MessageID string
	Accepted  []string
}

// Sender delivers a message to a single recipient. Implementations surface
// transport-level errors; retrying is the caller's concern (and nobody
// here retries).
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
