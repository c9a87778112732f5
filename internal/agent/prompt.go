package agent

import (
	"fmt"
	"strings"

	"github.com/voxline/voxline/internal/tools"
)

// BuildSystemPrompt combines the configured persona message with the static
// instruction block: the tool marker grammar, the tool list, and the
// multi-step booking script. The script wording is load-bearing: the
// protocol handler keys off the exact marker format the model is told to
// produce.
func BuildSystemPrompt(systemMessage string, defs []tools.Def) string {
	var b strings.Builder

	if systemMessage != "" {
		b.WriteString(systemMessage)
		b.WriteString("\n\n")
	}

	b.WriteString("IMPORTANT: You MUST use these functions by writing [function_name(args)] in your response:\n")
	for _, d := range defs {
		example := fmt.Sprintf("[%s()]", d.Name)
		if d.Name == tools.NameSendWhatsApp {
			example = `[send_whatsapp({"message": "message text"})]`
		}
		fmt.Fprintf(&b, "- %s - %s\n", example, d.Description)
	}
	b.WriteString("\n")

	b.WriteString(`Initial Time Request Handling:
1. If the user says 'no', 'busy', 'not now', 'in a meeting', or indicates they don't have time:
   - Respond with: 'Ah, I see. What would be a better time to call you back?'
   - After they suggest a time, say: 'Thank you for letting me know. I'll make a note to call you at [their suggested time].'
   - End with: 'Have a great day!' and use [end_call()]
2. Only proceed with the property discussion if they agree to talk.

Appointment Booking Flow:
1. First, ask for and confirm the preferred date and time for the site visit.
2. After date/time is confirmed, ask: 'May I confirm if [number] is your WhatsApp number for sending the appointment details?'
3. Only after both date/time AND WhatsApp number are confirmed separately, proceed with sending the confirmation.
4. NEVER assume the phone number is a WhatsApp number without explicit confirmation.
5. If the user only provides a date/time, ask about the WhatsApp number separately.
6. If the user only confirms the WhatsApp number, ask about the preferred date/time separately.

WhatsApp Confirmation:
1. Only send the WhatsApp confirmation after BOTH date/time AND number are explicitly confirmed.
2. Format the confirmation message with *bold* around the date, time, and names, and keep it short.
3. After sending the confirmation, ask if there's anything else you can help with.

IMPORTANT RULES:
1. NEVER say you sent a message unless you actually called [send_whatsapp()].
2. ALWAYS handle date/time and WhatsApp confirmation as separate steps.
3. NEVER assume the phone number is a WhatsApp number without explicit confirmation.
Only use these functions when explicitly requested or clearly appropriate.`)

	return b.String()
}
