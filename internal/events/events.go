// Package events carries in-process notifications between the settings
// surface, the sync service and the TUI.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Topic string

const (
	// DataWindowChanged fires after the historical window changed and the
	// store was reloaded for it.
	DataWindowChanged Topic = "data_window_changed"
	// DataSyncCompleted fires after any sync or classification pass
	// finished writing to the store.
	DataSyncCompleted Topic = "data_sync_completed"
	// SettingsChanged fires whenever the settings surface state changes.
	SettingsChanged Topic = "settings_changed"
)

func (t Topic) String() string { return string(t) }

type Event struct {
	ID     uuid.UUID `json:"id"`
	Topic  Topic     `json:"topic"`
	At     time.Time `json:"at"`
	Origin string    `json:"origin,omitempty"`
}

func New(topic Topic) Event {
	return Event{
		ID:    uuid.New(),
		Topic: topic,
		At:    time.Now(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	// Subscribe returns a channel of events on the given topics, or on every
	// topic when none are given. The returned func unsubscribes and closes
	// the channel.
	Subscribe(topics ...Topic) (<-chan Event, func())
}

type Bus interface {
	Publisher
	Subscriber
}
