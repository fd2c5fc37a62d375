package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *publisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestEmitAuditEnvelope(t *testing.T) {
	publisher := new(publisherMock)
	emitter := NewEmitter(publisher, "messaging.audit", "tuition-messaging", "test")

	userID := "user-1"
	publisher.On("Publish", mock.Anything, "messaging.audit.audit_log", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(Envelope)
		if !ok {
			return false
		}
		payload, ok := envelope.Payload.(AuditPayload)
		return ok &&
			envelope.SchemaVersion == 1 &&
			envelope.EventType == "audit_log" &&
			envelope.Service == "tuition-messaging" &&
			envelope.Environment == "test" &&
			envelope.RequestID == "req-1" &&
			envelope.UserID == &userID &&
			payload.Level == "INFO"
	})).Return(nil).Once()

	emitter.EmitAudit(context.Background(), "INFO", "hello", "req-1", &userID)
	publisher.AssertExpectations(t)
}

func TestEmitEventRoutingKey(t *testing.T) {
	publisher := new(publisherMock)
	emitter := NewEmitter(publisher, "messaging.audit", "tuition-messaging", "test")

	publisher.On("Publish", mock.Anything, "messaging.audit.message.sent", mock.Anything).Return(nil).Once()

	emitter.EmitEvent(context.Background(), "message.sent", nil, map[string]any{"message_id": "m1"})
	publisher.AssertExpectations(t)
}

func TestNilEmitterIsSafe(t *testing.T) {
	var emitter *Emitter
	require.NotPanics(t, func() {
		emitter.EmitAudit(context.Background(), "INFO", "noop", "", nil)
		emitter.EmitEvent(context.Background(), "message.sent", nil, nil)
	})
}
