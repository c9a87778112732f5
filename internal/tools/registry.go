// Package tools declares the static tool table the agent can invoke.
//
// The set is fixed at compile time: adding a tool means adding a Def here and
// teaching the protocol handler its execution branch. There is no runtime
// registration.
package tools

// Kind tags a tool with its execution branch in the protocol handler.
type Kind int

const (
	KindTransfer Kind = iota
	KindEndCall
	KindSendWhatsApp
)

// Tool name constants as they appear in model output markers.
const (
	NameTransferCall = "transfer_call"
	NameEndCall      = "end_call"
	NameSendWhatsApp = "send_whatsapp"
)

// Def describes one tool: its marker name, what it does, the line spoken
// while it runs, and the JSON Schema of its argument payload.
type Def struct {
	Name        string
	Kind        Kind
	Description string
	Say         string
	InputSchema string
}

var registry = []Def{
	{
		Name:        NameTransferCall,
		Kind:        KindTransfer,
		Description: "Transfers the current call to another number",
		Say:         "Please hold while I transfer your call.",
		InputSchema: `{"type":"object","properties":{},"required":[]}`,
	},
	{
		Name:        NameEndCall,
		Kind:        KindEndCall,
		Description: "Ends the current call",
		Say:         "Well then, thank you so much for your time. It was a pleasure speaking with you. Have a great day!",
		InputSchema: `{"type":"object","properties":{},"required":[]}`,
	},
	{
		Name:        NameSendWhatsApp,
		Kind:        KindSendWhatsApp,
		Description: "Sends a WhatsApp message to the user's number",
		Say:         "Great, I'll send you the appointment details over WhatsApp.",
		InputSchema: `{"type":"object","properties":{"message":{"type":"string","description":"The message to send"}},"required":["message"]}`,
	},
}

// Lookup returns the definition for a tool name.
func Lookup(name string) (Def, bool) {
	for _, d := range registry {
		if d.Name == name {
			return d, true
		}
	}
	return Def{}, false
}

// Definitions returns all tool definitions in declaration order, for
// rendering into the model prompt.
func Definitions() []Def {
	out := make([]Def, len(registry))
	copy(out, registry)
	return out
}
