package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps events published to NATS.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	EventType string          `json:"event_type"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
