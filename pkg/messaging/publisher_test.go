package messaging_test

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punchaudit/punchaudit-backend/pkg/logger"
	"github.com/punchaudit/punchaudit-backend/pkg/messaging"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	pub := messaging.NewPublisherWithChannel(ch, messaging.ExchangeAuditEvents, "audit-service", logger.Nop())

	ctx := messaging.WithCorrelationID(context.Background(), "corr-1")
	payload := messaging.AnalysisCompletedEvent{RunID: "req_0123456789ab", RowsReceived: 4, Flags: map[string]int{"low_rest_hours": 1}}
	require.NoError(t, pub.Publish(ctx, messaging.EventAnalysisCompleted, payload))

	assert.Equal(t, messaging.ExchangeAuditEvents, ch.exchange)
	assert.Equal(t, messaging.EventAnalysisCompleted, ch.key)
	assert.Equal(t, "corr-1", ch.msg.CorrelationId)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var event messaging.Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &event))
	assert.Equal(t, ch.msg.MessageId, event.ID)
	assert.Equal(t, "audit-service", event.Source)

	var got messaging.AnalysisCompletedEvent
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, payload, got)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: assert.AnError}
	pub := messaging.NewPublisherWithChannel(ch, messaging.ExchangeAuditEvents, "audit-service", logger.Nop())

	err := pub.Publish(context.Background(), messaging.EventAnalysisCompleted, struct{}{})
	assert.ErrorIs(t, err, assert.AnError)
}
