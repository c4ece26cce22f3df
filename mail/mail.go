// Package mail is the outbound email capability used by the onboarding and
// reset workflows. Failures surface as plain errors so callers can run their
// compensating rollbacks.
package mail

import (
	"context"
	"sync"
)

// Message is one transactional email carrying a time-boxed link.
type Message struct {
	Recipient     string
	RecipientName string
	Subject       string
	Description   string
	Link          string
	ValidityHours int
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Recorder is a Sender that captures messages for tests. It can be primed to
// fail so workflow rollbacks can be exercised.
type Recorder struct {
	mu   sync.Mutex
	sent []Message

	// Err, when set, is returned by every Send without recording.
	Err error
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (r *Recorder) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.sent))
	copy(out, r.sent)
	return out
}
