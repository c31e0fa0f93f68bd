// Package realtime delivers remote theme-change notifications to local
// listeners, batching them behind a debounce window.
package realtime

import (
	"encoding/json"
	"time"
)

// UpdateType classifies what an update changes.
type UpdateType string

const (
	UpdateTheme  UpdateType = "theme"
	UpdateToken  UpdateType = "token"
	UpdateEffect UpdateType = "effect"
)

// DefaultChannel is the broadcast channel carrying theme updates.
const DefaultChannel = "theme_updates"

// Update is one change notification as carried on the wire.
type Update struct {
	Type      UpdateType      `json:"type"`
	Path      []string        `json:"path"`
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
	Source    string          `json:"source"`
}

// NewUpdate builds an update stamped with the current time. value is JSON
// encoded; it must be encodable.
func NewUpdate(typ UpdateType, path []string, value any, source string) (Update, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Update{}, err
	}
	return Update{
		Type:      typ,
		Path:      path,
		Value:     data,
		Timestamp: time.Now().UnixMilli(),
		Source:    source,
	}, nil
}

// TopicFor returns the event bus topic used for a broadcast channel.
func TopicFor(channel string) string {
	return "realtime." + channel
}
