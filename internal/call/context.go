// Package call holds the per-call conversation state.
package call

import (
	"fmt"
	"time"
)

// Role constants for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// Turn is a single entry in the conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ValidationError reports a rejected field update. The context is left
// unmodified when one is returned.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Reason codes returned by CanDispatchNotification, in check order.
const (
	ReasonWhatsAppNotConfirmed = "whatsapp_not_confirmed"
	ReasonDateTimeNotConfirmed = "datetime_not_confirmed"
	ReasonMissingName          = "missing_name"
	ReasonMissingDate          = "missing_date"
	ReasonMissingTime          = "missing_time"
)

// Context is the state for one active call. It is exclusively owned by the
// call-handling session for the call's lifetime; no locking is needed.
type Context struct {
	StreamSID string
	CallSID   string

	StartTime *time.Time
	EndTime   *time.Time

	Turns []Turn

	SystemMessage  string
	InitialMessage string

	AppointmentDate    string // YYYY-MM-DD, empty until known
	AppointmentTime    string // HH:MM, empty until known
	UserName           string
	UserPhone          string
	PropertyOfInterest string

	DateTimeConfirmed    bool
	AppointmentScheduled bool
	WhatsappConfirmed    bool
	WhatsappSent         bool
	AskedAnythingElse    bool
	LastResponseWasNo    bool
	ConversationEnded    bool
	CallEnded            bool

	FinalStatus string
}

// New creates a call context with the given prompt templates and stamps the
// start time.
func New(systemMessage, initialMessage string) *Context {
	now := time.Now()
	return &Context{
		StartTime:      &now,
		SystemMessage:  systemMessage,
		InitialMessage: initialMessage,
	}
}

// SeedConversation primes the history with the opening exchange: the caller's
// greeting and the agent's initial message.
func (c *Context) SeedConversation() {
	c.Turns = []Turn{
		{Role: RoleUser, Content: "Hello"},
		{Role: RoleAssistant, Content: c.InitialMessage},
	}
}

// AppendTurn adds one turn to the conversation history.
func (c *Context) AppendTurn(role, content, name string) {
	c.Turns = append(c.Turns, Turn{Role: role, Content: content, Name: name})
}

// Update applies a batch of appointment detail fields. Recognized keys:
// "date" (YYYY-MM-DD), "time" (HH:MM), "name", "phone", "property".
// Validation happens before any mutation so a bad value leaves the context
// untouched. Derived flags are recomputed on success.
func (c *Context) Update(details map[string]string) error {
	var date, tm string
	if v, ok := details["date"]; ok {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return &ValidationError{Field: "date", Value: v, Reason: "want YYYY-MM-DD"}
		}
		// reparse-and-format so non-padded components come out canonical
		date = parsed.Format("2006-01-02")
	}
	if v, ok := details["time"]; ok {
		parsed, err := time.Parse("15:04", v)
		if err != nil {
			return &ValidationError{Field: "time", Value: v, Reason: "want HH:MM"}
		}
		tm = parsed.Format("15:04")
	}

	if _, ok := details["date"]; ok {
		c.AppointmentDate = date
	}
	if _, ok := details["time"]; ok {
		c.AppointmentTime = tm
	}
	if v, ok := details["name"]; ok {
		c.UserName = v
	}
	if v, ok := details["phone"]; ok {
		c.UserPhone = v
	}
	if v, ok := details["property"]; ok {
		c.PropertyOfInterest = v
	}

	c.DateTimeConfirmed = c.AppointmentDate != "" && c.AppointmentTime != ""
	c.AppointmentScheduled = c.DateTimeConfirmed && c.UserName != ""
	return nil
}

// CanDispatchNotification reports whether the appointment confirmation may be
// sent. When it may not, the second return is the first unmet precondition,
// checked in fixed order.
func (c *Context) CanDispatchNotification() (bool, string) {
	switch {
	case !c.WhatsappConfirmed:
		return false, ReasonWhatsAppNotConfirmed
	case !c.DateTimeConfirmed:
		return false, ReasonDateTimeNotConfirmed
	case c.UserName == "":
		return false, ReasonMissingName
	case c.AppointmentDate == "":
		return false, ReasonMissingDate
	case c.AppointmentTime == "":
		return false, ReasonMissingTime
	}
	return true, ""
}

// ResetConversationFlags clears the turn-scoped closing flags. Appointment
// fields are preserved.
func (c *Context) ResetConversationFlags() {
	c.AskedAnythingElse = false
	c.LastResponseWasNo = false
}

// MarkEnded flags the conversation and call as over and stamps the end time.
// Safe to call more than once; later calls only re-stamp the time.
func (c *Context) MarkEnded() {
	c.ConversationEnded = true
	c.CallEnded = true
	now := time.Now()
	c.EndTime = &now
}
