package events

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
)

func testLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

type fakePublisher struct {
	published []kafka.Event
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, event kafka.Event) error {
	f.published = append(f.published, event)
	return f.err
}

func strPtr(s string) *string { return &s }

func TestEmitContactCreated(t *testing.T) {
	pub := &fakePublisher{}
	e := &Emitter{publisher: pub, logger: testLogger()}

	e.EmitContactCreated(context.Background(), &models.Contact{
		ID:          7,
		Email:       strPtr("doc@example.com"),
		PhoneNumber: strPtr("111"),
	})

	require.Len(t, pub.published, 1)
	published := pub.published[0]
	assert.Equal(t, "7", published.Key)
	assert.Equal(t, string(EventTypeContactCreated), published.EventType)
	assert.Equal(t, SchemaVersion, published.SchemaVersion)

	payload, ok := published.Payload.(ContactCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(7), payload.ContactID)
	require.NotNil(t, payload.Email)
	assert.Equal(t, "doc@example.com", *payload.Email)
	require.NotNil(t, payload.PhoneNumber)
	assert.Equal(t, "111", *payload.PhoneNumber)
	assert.Equal(t, EventTypeContactCreated, payload.EventType)
	assert.NotEmpty(t, payload.CorrelationID)
	assert.False(t, payload.Timestamp.IsZero())
}

func TestEmitContactLinked(t *testing.T) {
	pub := &fakePublisher{}
	e := &Emitter{publisher: pub, logger: testLogger()}

	e.EmitContactLinked(context.Background(), &models.Contact{ID: 9}, 3)

	require.Len(t, pub.published, 1)
	published := pub.published[0]
	assert.Equal(t, "3", published.Key)
	assert.Equal(t, string(EventTypeContactLinked), published.EventType)

	payload, ok := published.Payload.(ContactLinkedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(9), payload.ContactID)
	assert.Equal(t, int64(3), payload.PrimaryContactID)
}

func TestEmitClusterMerged(t *testing.T) {
	pub := &fakePublisher{}
	e := &Emitter{publisher: pub, logger: testLogger()}

	e.EmitClusterMerged(context.Background(), 1, []int64{4}, []int64{1, 4, 6})

	require.Len(t, pub.published, 1)
	published := pub.published[0]
	assert.Equal(t, "1", published.Key)
	assert.Equal(t, string(EventTypeClusterMerged), published.EventType)

	payload, ok := published.Payload.(ClusterMergedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(1), payload.PrimaryContactID)
	assert.Equal(t, []int64{4}, payload.MergedPrimaryIDs)
	assert.Equal(t, []int64{1, 4, 6}, payload.MemberIDs)
}

func TestEmitterDropsEventsWithoutPublisher(t *testing.T) {
	var nilEmitter *Emitter
	nilEmitter.EmitContactCreated(context.Background(), &models.Contact{ID: 1})
	nilEmitter.EmitContactLinked(context.Background(), &models.Contact{ID: 1}, 1)
	nilEmitter.EmitClusterMerged(context.Background(), 1, nil, nil)

	disabled := NewEmitter(nil, testLogger())
	disabled.EmitContactCreated(context.Background(), &models.Contact{ID: 1})
	disabled.EmitContactLinked(context.Background(), &models.Contact{ID: 1}, 1)
	disabled.EmitClusterMerged(context.Background(), 1, nil, nil)
}

func TestEmitterSwallowsPublishErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	e := &Emitter{publisher: pub, logger: testLogger()}

	e.EmitContactCreated(context.Background(), &models.Contact{ID: 1})
	assert.Len(t, pub.published, 1)
}

func TestNewBaseEvent(t *testing.T) {
	base := NewBaseEvent(EventTypeContactCreated)
	assert.Equal(t, EventTypeContactCreated, base.EventType)
	assert.Equal(t, SchemaVersion, base.SchemaVersion)
	assert.NotEmpty(t, base.CorrelationID)
	assert.False(t, base.Timestamp.IsZero())
}
