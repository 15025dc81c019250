package amqp

import (
	"encoding/json"
	"time"
)

// RecordSyncMessage asks the worker to push one expense record to the
// accountant ledger. It carries only the ID; the worker reads the current
// row from the database, so a stale message never writes stale data.
type RecordSyncMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(id int64) *RecordSyncMessage {
	return &RecordSyncMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
