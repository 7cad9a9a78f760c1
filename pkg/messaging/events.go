package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventAnalysisCompleted = "audit.analysis.completed"
)

// Exchange names
const (
	ExchangeAuditEvents = "audit.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// AnalysisCompletedEvent is published after every successful analysis run
type AnalysisCompletedEvent struct {
	RunID           string         `json:"run_id"`
	SourceFilename  string         `json:"source_filename"`
	StartDate       string         `json:"start_date"`
	EndDate         string         `json:"end_date"`
	RowsReceived    int            `json:"rows_received"`
	RowsAfterFilter int            `json:"rows_after_filter"`
	Employees       int            `json:"employees"`
	Flags           map[string]int `json:"flags"`
	WarningCount    int            `json:"warning_count"`
	ReportAvailable bool           `json:"report_available"`
}
