// Package events handles event emission for contact lifecycle changes
package events

import (
	"context"
	"strconv"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/tracing"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Publisher publishes serialized events. Satisfied by kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Emitter handles event emission for Clover. A nil Emitter (or one without a
// publisher) drops all events; emission failures are logged and never
// propagate to the request.
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

// NewEmitter creates a new event emitter. A nil producer disables emission.
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	e := &Emitter{logger: logger}
	if producer != nil {
		e.publisher = producer
	}
	return e
}

// EmitContactCreated emits a contact.created event for a new primary
func (e *Emitter) EmitContactCreated(ctx context.Context, contact *models.Contact) {
	if e == nil || e.publisher == nil {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitContactCreated")
	defer span.End()

	event := ContactCreatedEvent{
		BaseEvent:   NewBaseEvent(EventTypeContactCreated),
		ContactID:   contact.ID,
		Email:       contact.Email,
		PhoneNumber: contact.PhoneNumber,
	}
	e.publish(ctx, contact.ID, event.BaseEvent, event)
}

// EmitContactLinked emits a contact.linked event for a new secondary
func (e *Emitter) EmitContactLinked(ctx context.Context, contact *models.Contact, primaryID int64) {
	if e == nil || e.publisher == nil {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitContactLinked")
	defer span.End()

	event := ContactLinkedEvent{
		BaseEvent:        NewBaseEvent(EventTypeContactLinked),
		ContactID:        contact.ID,
		PrimaryContactID: primaryID,
	}
	e.publish(ctx, primaryID, event.BaseEvent, event)
}

// EmitClusterMerged emits a cluster.merged event after consolidation
func (e *Emitter) EmitClusterMerged(ctx context.Context, primaryID int64, mergedPrimaryIDs, memberIDs []int64) {
	if e == nil || e.publisher == nil {
		return
	}

	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitClusterMerged")
	defer span.End()

	event := ClusterMergedEvent{
		BaseEvent:        NewBaseEvent(EventTypeClusterMerged),
		PrimaryContactID: primaryID,
		MergedPrimaryIDs: mergedPrimaryIDs,
		MemberIDs:        memberIDs,
	}
	e.publish(ctx, primaryID, event.BaseEvent, event)
}

// publish keys the event by the cluster's primary id and drops failures after
// logging them
func (e *Emitter) publish(ctx context.Context, primaryID int64, base BaseEvent, payload any) {
	err := e.publisher.Publish(ctx, kafka.Event{
		Key:           strconv.FormatInt(primaryID, 10),
		EventType:     string(base.EventType),
		SchemaVersion: base.SchemaVersion,
		Payload:       payload,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": base.EventType,
		}).Error("Failed to emit contact event")
	}
}
