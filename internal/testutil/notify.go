package testutil

import (
	"context"
	"sync"

	"github.com/Ramchandran06/E-commerce-backend/internal/notifications"
)

// RecordingNotifier keeps every message it is asked to send.
type RecordingNotifier struct {
	mu       sync.Mutex
	Messages []notifications.Message
}

func (r *RecordingNotifier) Notify(_ context.Context, msg notifications.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, msg)
}

func (r *RecordingNotifier) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Messages)
}

func (r *RecordingNotifier) Last() notifications.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return notifications.Message{}
	}
	return r.Messages[len(r.Messages)-1]
}
