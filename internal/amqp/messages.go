package amqp

import (
	"encoding/json"
	"time"
)

// DatasetRefreshMessage signals that the prepared dataset was replaced.
// It carries only counts; consumers fetch the actual rows from storage.
type DatasetRefreshMessage struct {
	Rows      int       `json:"rows"`
	Years     []int     `json:"years"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetRefreshMessage creates a refresh message for a completed load
func NewDatasetRefreshMessage(rows int, years []int) *DatasetRefreshMessage {
	return &DatasetRefreshMessage{
		Rows:      rows,
		Years:     years,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetRefreshMessageFromJSON creates a message from JSON bytes
func DatasetRefreshMessageFromJSON(data []byte) (*DatasetRefreshMessage, error) {
	var msg DatasetRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
