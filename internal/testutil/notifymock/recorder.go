package notifymock

import (
	"context"
	"sync"

	"loansyncro/internal/domain/notification"
)

var _ notification.Publisher = (*Recorder)(nil)

// Recorder keeps every published message. Set Err to make Publish fail
// after recording.
type Recorder struct {
	mu   sync.Mutex
	msgs []notification.Message
	Err  error
}

func (r *Recorder) Publish(_ context.Context, subject, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, notification.Message{Subject: subject, Body: message})
	return r.Err
}

func (r *Recorder) Messages() []notification.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Message(nil), r.msgs...)
}

// Count returns how many messages carried subject.
func (r *Recorder) Count(subject string) int {
	n := 0
	for _, m := range r.Messages() {
		if m.Subject == subject {
			n++
		}
	}
	return n
}
