package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of delivery event
type EventType string

const (
	EventContactRejected       EventType = "contact_rejected"
	EventContactEmailSent      EventType = "contact_email_sent"
	EventContactDelivered      EventType = "contact_delivered"
	EventContactDeliveryFailed EventType = "contact_delivery_failed"
	EventTestEmailSent         EventType = "test_email_sent"
	EventTestEmailFailed       EventType = "test_email_failed"
	EventCORSOriginRejected    EventType = "cors_origin_rejected"
)

// Event represents a delivery-related event to be logged
type Event struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "origin"
	SubjectValue string // Masked for PII
	RequestID    string
	Details      map[string]interface{}
}

// Logger provides structured logging for contact delivery events
type Logger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

// New builds an audit logger writing JSON to stdout.
func New(serviceName, environment string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewWithZap(logger, serviceName, environment)
}

// NewWithZap wraps an existing zap logger.
func NewWithZap(logger *zap.Logger, serviceName, environment string) *Logger {
	return &Logger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return NewWithZap(zap.NewNop(), "", "")
}

// Log logs a delivery event
func (l *Logger) Log(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	level := zapcore.InfoLevel
	switch event.Event {
	case EventContactRejected, EventCORSOriginRejected:
		level = zapcore.WarnLevel
	case EventContactDeliveryFailed, EventTestEmailFailed:
		level = zapcore.ErrorLevel
	}

	fields := []zap.Field{
		zap.String("service", l.serviceName),
		zap.String("env", l.environment),
		zap.String("event", string(event.Event)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	l.zapLogger.Log(level, string(event.Event), fields...)
}

// ContactRejected logs a submission that failed validation
func (l *Logger) ContactRejected(ctx context.Context, email, requestID, reason string) {
	l.Log(ctx, Event{
		Event:        EventContactRejected,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		RequestID:    requestID,
		Details:      map[string]interface{}{"reason": reason},
	})
}

// ContactEmailSent logs one successful leg of a submission
func (l *Logger) ContactEmailSent(ctx context.Context, email, requestID, stage string) {
	l.Log(ctx, Event{
		Event:        EventContactEmailSent,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		RequestID:    requestID,
		Details:      map[string]interface{}{"stage": stage},
	})
}

// ContactDelivered logs a submission whose both legs succeeded
func (l *Logger) ContactDelivered(ctx context.Context, email, requestID string) {
	l.Log(ctx, Event{
		Event:        EventContactDelivered,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		RequestID:    requestID,
	})
}

// ContactDeliveryFailed logs a failed leg. partial is true when an earlier leg was already sent.
func (l *Logger) ContactDeliveryFailed(ctx context.Context, email, requestID, stage string, partial bool, err error) {
	l.Log(ctx, Event{
		Event:        EventContactDeliveryFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		RequestID:    requestID,
		Details: map[string]interface{}{
			"stage":   stage,
			"partial": partial,
			"error":   errString(err),
		},
	})
}

// TestEmail logs the outcome of an operator self-test
func (l *Logger) TestEmail(ctx context.Context, requestID string, err error) {
	event := Event{Event: EventTestEmailSent, RequestID: requestID}
	if err != nil {
		event.Event = EventTestEmailFailed
		event.Details = map[string]interface{}{"error": err.Error()}
	}
	l.Log(ctx, event)
}

// CORSOriginRejected logs a browser request from an origin outside the allow-list
func (l *Logger) CORSOriginRejected(ctx context.Context, origin, path, requestID string) {
	l.Log(ctx, Event{
		Event:        EventCORSOriginRejected,
		SubjectType:  "origin",
		SubjectValue: origin,
		RequestID:    requestID,
		Details:      map[string]interface{}{"path": path},
	})
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex < 0 {
		return HashValue(email)
	}
	first, size := utf8.DecodeRuneInString(email)
	if atIndex <= size {
		return "***" + email[atIndex:]
	}
	return string(first) + "***" + email[atIndex:]
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
