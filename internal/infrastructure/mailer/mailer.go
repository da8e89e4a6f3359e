package mailer

import "context"

// Email is one outbound message, already rendered.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a single email. Implementations must be safe for concurrent
// use; the dispatcher calls Send from its drain loop.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}
