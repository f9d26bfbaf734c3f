package amqp

import (
	"encoding/json"
	"time"
)

// Event names carried in LedgerEventMessage.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
)

// LedgerEventMessage is a lightweight notification: event name plus the
// transaction id. Consumers look the record up themselves.
type LedgerEventMessage struct {
	Event     string    `json:"event"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(event string, id int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Event:     event,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
