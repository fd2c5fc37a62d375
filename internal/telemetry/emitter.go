package telemetry

import (
	"context"
	"log"
	"time"
)

// Publisher is the outbound event channel. The analytics pipeline consuming
// these events lives outside this service.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// Emitter publishes versioned event envelopes for audit and domain events.
type Emitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

// Envelope is the wire schema shared by all emitted events.
type Envelope struct {
	SchemaVersion int     `json:"schema_version"`
	EventType     string  `json:"event_type"`
	OccurredAt    string  `json:"occurred_at"`
	Service       string  `json:"service"`
	Environment   string  `json:"environment"`
	RequestID     string  `json:"request_id,omitempty"`
	UserID        *string `json:"user_id,omitempty"`
	Payload       any     `json:"payload"`
}

// AuditPayload is the payload of audit_log events.
type AuditPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// NewEmitter constructs an Emitter bound to one routing key.
func NewEmitter(publisher Publisher, routingKey, service, environment string) *Emitter {
	return &Emitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

// EmitAudit publishes an audit_log event. Failures are logged, never fatal.
func (e *Emitter) EmitAudit(ctx context.Context, level, text, requestID string, userID *string) {
	e.emit(ctx, "audit_log", requestID, userID, AuditPayload{Level: level, Text: text})
}

// EmitEvent publishes a domain event with an arbitrary payload.
func (e *Emitter) EmitEvent(ctx context.Context, eventType string, userID *string, payload any) {
	e.emit(ctx, eventType, "", userID, payload)
}

func (e *Emitter) emit(ctx context.Context, eventType, requestID string, userID *string, payload any) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: 1,
		EventType:     eventType,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload:       payload,
	}

	if err := e.publisher.Publish(ctx, e.routingKey+"."+eventType, envelope); err != nil {
		log.Printf("telemetry publish failed: %v", err)
	}
}
