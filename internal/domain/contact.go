package domain

import (
	"context"
	"fmt"
	"strings"
)

// ContactRequest represents a contact form submission. It is never persisted.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,notblank"`
	Email   string `json:"email" validate:"required,notblank,contact_email"`
	Subject string `json:"subject" validate:"required,notblank"`
	Message string `json:"message" validate:"required,notblank,min_trimmed=10"`
}

// DeliveryStage is one outbound send performed by the gateway.
type DeliveryStage string

const (
	StageAdminNotification      DeliveryStage = "admin_notification"
	StageVisitorAcknowledgement DeliveryStage = "visitor_acknowledgement"
	StageTest                   DeliveryStage = "test"
)

// ContactStages is the fixed order in which a submission is delivered.
var ContactStages = []DeliveryStage{StageAdminNotification, StageVisitorAcknowledgement}

// ValidationError is a rejected submission. Message is safe to show to the visitor.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DeliveryError reports the stage whose send failed and the stages already sent before it.
// Sent stages are not rolled back.
type DeliveryError struct {
	Stage DeliveryStage
	Sent  []DeliveryStage
	Err   error
}

func (e *DeliveryError) Error() string {
	if len(e.Sent) == 0 {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	sent := make([]string, len(e.Sent))
	for i, s := range e.Sent {
		sent[i] = string(s)
	}
	return fmt.Sprintf("%s (after %s): %v", e.Stage, strings.Join(sent, ", "), e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Partial reports whether some mail already left before the failure.
func (e *DeliveryError) Partial() bool {
	return len(e.Sent) > 0
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// SendContactMessage validates req and delivers the admin notification, then the visitor acknowledgement.
	// It returns *ValidationError or *DeliveryError.
	SendContactMessage(ctx context.Context, req *ContactRequest) error
	// SendTestEmail sends one self-test message to the owner.
	SendTestEmail(ctx context.Context) error
}
