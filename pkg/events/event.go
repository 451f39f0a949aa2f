package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "FEEDBACK_RECORDED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted by the recommendation flow.
const (
	TypeFeedbackRecorded = "FEEDBACK_RECORDED"
	TypeSessionStarted   = "SESSION_STARTED"
	TypeCatalogUpgraded  = "CATALOG_UPGRADED"
)

// NewFeedbackRecorded reports a like/dislike/save action on a product.
func NewFeedbackRecorded(sessionId, itemId, action string) Event {
	return BaseEvent{
		Type: TypeFeedbackRecorded,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"item_id":    itemId,
			"action":     action,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionStarted reports a fresh recommendation session.
func NewSessionStarted(sessionId string, resultCount int) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"session_id":   sessionId,
			"result_count": resultCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewCatalogUpgraded reports a catalog snapshot swap to a better search mode.
func NewCatalogUpgraded(mode string, totalCount int) Event {
	return BaseEvent{
		Type: TypeCatalogUpgraded,
		Data: map[string]interface{}{
			"mode":        mode,
			"total_count": totalCount,
		},
		OccurredAt: time.Now(),
	}
}
