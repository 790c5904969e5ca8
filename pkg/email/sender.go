// Package email composes outbound contact mail and hands it to a pluggable provider.
package email

import (
	"context"
	"errors"
	"net/mail"
)

// ErrNotConfigured is returned by provider constructors when required settings are absent.
var ErrNotConfigured = errors.New("email: sender not configured")

// Address is a display name plus mailbox.
type Address struct {
	Name  string
	Email string
}

// String renders the address in RFC 5322 form, encoding the name when needed.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Message is a single outbound email. It lives for one Send call.
type Message struct {
	From    Address
	To      string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Identity is the per-process sender configuration shared by every message.
type Identity struct {
	FromName  string
	FromEmail string
	// OwnerTo receives contact notifications and self-test mail.
	OwnerTo string
}

// From returns the fixed sender address.
func (i Identity) From() Address {
	return Address{Name: i.FromName, Email: i.FromEmail}
}

// Sender is the interface for email providers.
// Any returned error means the message was not accepted by the provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
