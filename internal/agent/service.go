// Package agent drives one voice call: it turns user utterances into model
// prompts, interprets tool-call markers in the model's replies, runs the
// side effects, and streams speakable sentences back to the transport.
package agent

import (
	"context"
	"time"

	"github.com/voxline/voxline/internal/call"
	"github.com/voxline/voxline/internal/contacts"
)

// Reply is one speakable unit handed to the transport. Index is nil for
// out-of-band lines (tool acknowledgments, closing lines) and carries the
// monotonically increasing partial-response index for streamed sentences.
type Reply struct {
	Index *int
	Text  string
}

// EmitFunc receives replies synchronously as they become ready.
type EmitFunc func(reply Reply, interactionCount int)

// CallControl transfers or terminates the underlying call session.
type CallControl interface {
	TransferCall(ctx context.Context, callSID string) (string, error)
	EndCall(ctx context.Context, callSID string) (string, error)
}

// Notifier delivers an outbound confirmation message to a phone number.
type Notifier interface {
	Send(ctx context.Context, recipient, message string) error
}

// ContactSource resolves the caller's contact record when the call context
// has no confirmed phone number.
type ContactSource interface {
	Load() (contacts.Contact, error)
}

// Service is a completion driver: one concrete implementation exists, but the
// interface keeps the tool-call protocol independent of the model backend.
type Service interface {
	// Respond processes one turn: append the inbound text to history, invoke
	// the model, and either execute a tool call or stream the reply.
	Respond(ctx context.Context, text string, interactionCount int, role, name string) error

	// SetCallContext attaches a call context and seeds its conversation.
	SetCallContext(cc *call.Context)

	// Reset clears turn-streaming state between calls.
	Reset()
}

// Config tunes the driver.
type Config struct {
	MaxTokens   int
	Temperature *float64

	ClosingLine   string
	ClosingPause  time.Duration
	TransferDelay time.Duration
	HangupDelay   time.Duration
}

// Lines spoken by the driver itself rather than the model.
const (
	alreadySentLine = "I've already sent you the confirmation message. Is there anything else I can help you with?"
	sentConfirmLine = "I've sent you the confirmation. Is there anything else I can assist you with?"
	sendApologyLine = "I apologize, but I couldn't send the WhatsApp message. "
	defaultClosing  = "Thank you for your time. Looking forward to meeting you!"
)
