package observe

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies a spectator message.
type MessageType string

const (
	// MessageTypeState carries a game.State snapshot.
	MessageTypeState MessageType = "state"
	// MessageTypeGameEnded is sent once the snapshot stream closes.
	MessageTypeGameEnded MessageType = "game_ended"
)

// Message is the envelope pushed to watchers.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with data encoded as JSON.
func NewMessage(messageType MessageType, data any, at time.Time) (*Message, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s message: %w", messageType, err)
		}
		raw = b
	}
	return &Message{Type: messageType, Data: raw, Timestamp: at}, nil
}
