package dedupe

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Store is the slice of the redis client the guard needs.
type Store interface {
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Del(context.Context, ...string) error
	DedupeKey(consumer, messageID string) string
}

// Manager remembers which message IDs a consumer has already handled.
// Keys follow the `shop:dedupe:<consumer>:<message_id>` pattern.
type Manager struct {
	store Store
	ttl   time.Duration
}

func NewManager(store Store, ttl time.Duration) (*Manager, error) {
	if store == nil {
		return nil, errors.New("dedupe store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &Manager{store: store, ttl: ttl}, nil
}

// CheckAndMark reports true when the message was seen before; otherwise it
// claims the message for the configured TTL.
func (m *Manager) CheckAndMark(ctx context.Context, consumer, messageID string) (bool, error) {
	key, err := m.key(consumer, messageID)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release forgets a claim so a redelivery can retry the message.
func (m *Manager) Release(ctx context.Context, consumer, messageID string) error {
	key, err := m.key(consumer, messageID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *Manager) key(consumer, messageID string) (string, error) {
	if strings.TrimSpace(consumer) == "" {
		return "", errors.New("consumer name is required")
	}
	if strings.TrimSpace(messageID) == "" {
		return "", errors.New("message id is required")
	}
	return m.store.DedupeKey(consumer, messageID), nil
}
