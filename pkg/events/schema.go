package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of event
type EventType string

const (
	// EventTypeContactCreated is emitted when a new primary contact is created
	EventTypeContactCreated EventType = "contact.created"
	// EventTypeContactLinked is emitted when a secondary contact is created
	// and linked into an existing cluster
	EventTypeContactLinked EventType = "contact.linked"
	// EventTypeClusterMerged is emitted when two or more clusters are
	// consolidated under one primary
	EventTypeClusterMerged EventType = "cluster.merged"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// ContactCreatedEvent is emitted when a new primary contact is created
type ContactCreatedEvent struct {
	BaseEvent
	ContactID   int64   `json:"contact_id"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// ContactLinkedEvent is emitted when a secondary contact joins a cluster
type ContactLinkedEvent struct {
	BaseEvent
	ContactID        int64 `json:"contact_id"`
	PrimaryContactID int64 `json:"primary_contact_id"`
}

// ClusterMergedEvent is emitted when clusters are consolidated
type ClusterMergedEvent struct {
	BaseEvent
	PrimaryContactID int64   `json:"primary_contact_id"`
	MergedPrimaryIDs []int64 `json:"merged_primary_ids"`
	MemberIDs        []int64 `json:"member_ids"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
