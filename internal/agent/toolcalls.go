package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/voxline/voxline/internal/call"
	"github.com/voxline/voxline/internal/tools"
)

// The extraction patterns and their normalization fallback order are a
// black-box contract: turn-termination decisions depend on exact
// match/no-match outcomes, so they must not be "improved".
var (
	// markerPattern matches [name(args)] tool-call markers.
	markerPattern = regexp.MustCompile(`\[(\w+)\((.*?)\)\]`)

	// datePattern mines ISO dates or spelled-out day-month forms from prose.
	datePattern = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}|\d{1,2}(?:st|nd|rd|th)?\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*(?:\s+\d{4})?)`)

	// timePattern mines clock times, 12-hour with am/pm or bare 24-hour.
	timePattern = regexp.MustCompile(`(\d{1,2}(?::\d{2})?\s*(?:am|pm|AM|PM)|\d{2}:\d{2})`)
)

// negativeTokens signal the caller is done. Substring matching, same as the
// closing heuristic has always worked.
var negativeTokens = []string{"no", "nope", "nahi", "not really", "that's all", "nothing else"}

// normalizeDate canonicalizes a mined date string to YYYY-MM-DD.
// Fallback order: ISO, then "2 January 2006". Anything else is dropped.
func normalizeDate(s string) (string, bool) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), true
	}
	if t, err := time.Parse("2 January 2006", s); err == nil {
		return t.Format("2006-01-02"), true
	}
	return "", false
}

// normalizeTime canonicalizes a mined time string to HH:MM.
// Fallback order: 24-hour, then 12-hour with am/pm.
func normalizeTime(s string) (string, bool) {
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04"), true
	}
	if t, err := time.Parse("3:04 PM", strings.ToUpper(s)); err == nil {
		return t.Format("15:04"), true
	}
	return "", false
}

// parseToolArgs decodes a marker's JSON payload. Malformed payloads degrade
// to an empty argument set so a sloppy model never crashes the call.
func (d *Driver) parseToolArgs(raw string) map[string]any {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		d.log.Warn().Str("args", raw).Msg("invalid tool arguments from model, using empty set")
		return map[string]any{}
	}
	return args
}

// handleToolCalls interprets one model reply. It returns true when the turn
// is fully handled by side effects and normal sentence streaming must be
// skipped.
func (d *Driver) handleToolCalls(ctx context.Context, replyText string, interactionCount int) bool {
	lower := strings.ToLower(replyText)

	// Implicit appointment extraction: mine date/time from prose whenever
	// the reply talks about the appointment. Normalization failures are
	// dropped silently; they must not block the turn.
	if strings.Contains(lower, "appointment") {
		details := map[string]string{}
		if m := datePattern.FindString(replyText); m != "" {
			if norm, ok := normalizeDate(m); ok {
				details["date"] = norm
			}
		}
		if m := timePattern.FindString(replyText); m != "" {
			if norm, ok := normalizeTime(m); ok {
				details["time"] = norm
			}
		}
		if len(details) > 0 {
			if err := d.cc.Update(details); err != nil {
				d.log.Warn().Err(err).Msg("mined appointment details rejected")
			}
		}
	}

	// Negative closing: the caller said no after being asked "anything else".
	if containsNegative(lower) && (strings.Contains(lower, "anything else") || d.cc.AskedAnythingElse) {
		d.log.Info().Msg("caller indicated nothing else, closing the call")
		d.cc.LastResponseWasNo = true
		d.say(d.closingLine(), interactionCount)
		// Let the closing line be spoken before the call is torn down.
		d.pause(ctx, d.cfg.ClosingPause)
		d.cc.MarkEnded()
		if _, err := d.control.EndCall(ctx, d.cc.CallSID); err != nil {
			d.log.Error().Err(err).Msg("end-call action failed")
		}
		return true
	}

	matches := markerPattern.FindAllStringSubmatch(replyText, -1)
	if len(matches) == 0 {
		if strings.Contains(lower, "anything else") {
			d.cc.AskedAnythingElse = true
		}
		return false
	}

	for _, m := range matches {
		name, argsRaw := m[1], m[2]
		def, ok := tools.Lookup(name)
		if !ok {
			// Hallucinated tool name; ignore rather than crash the call.
			continue
		}

		d.log.Info().Str("tool", name).Str("args", argsRaw).Msg("detected tool call")

		if def.Kind == tools.KindSendWhatsApp && d.cc.WhatsappSent {
			d.log.Info().Msg("suppressing duplicate whatsapp confirmation")
			d.say(alreadySentLine, interactionCount)
			d.cc.AskedAnythingElse = true
			return true
		}

		d.say(def.Say, interactionCount)
		args := d.parseToolArgs(argsRaw)

		switch def.Kind {
		case tools.KindSendWhatsApp:
			d.execSendWhatsApp(ctx, args, interactionCount)
			return true
		case tools.KindEndCall:
			d.execEndCall(ctx)
			return true
		default:
			result := d.execTransfer(ctx)
			d.cc.AppendTurn(call.RoleAssistant, def.Say, "")
			// Feed the result back through the driver so the model can
			// react to it within the same turn.
			if err := d.Respond(ctx, result, interactionCount, call.RoleFunction, def.Name); err != nil {
				d.log.Error().Err(err).Str("tool", def.Name).Msg("function-result turn failed")
			}
			return true
		}
	}

	// Markers were present but none named a known tool.
	return false
}

func containsNegative(lower string) bool {
	for _, tok := range negativeTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// execSendWhatsApp resolves the recipient and dispatches the confirmation.
// Both outcomes are terminal for the turn.
func (d *Driver) execSendWhatsApp(ctx context.Context, args map[string]any, interactionCount int) {
	message, _ := args["message"].(string)

	if ok, reason := d.cc.CanDispatchNotification(); !ok {
		d.log.Warn().Str("reason", reason).Msg("dispatching confirmation before all preconditions met")
	}

	recipient := d.cc.UserPhone
	if recipient == "" && d.contacts != nil {
		contact, err := d.contacts.Load()
		if err != nil {
			d.log.Error().Err(err).Msg("could not resolve contact record")
		} else {
			recipient = contact.PhoneNumber
		}
	}

	var sendErr error
	if recipient == "" {
		sendErr = fmt.Errorf("no phone number available for this caller")
	} else {
		sendErr = d.notifier.Send(ctx, recipient, message)
	}

	if sendErr != nil {
		d.log.Error().Err(sendErr).Msg("whatsapp confirmation failed")
		d.say(sendApologyLine+sendErr.Error(), interactionCount)
		return
	}

	d.cc.WhatsappSent = true
	d.say(sentConfirmLine, interactionCount)
	d.cc.AskedAnythingElse = true
}

// execEndCall tears the call down after the acknowledgment has been spoken.
func (d *Driver) execEndCall(ctx context.Context) {
	d.pause(ctx, d.cfg.HangupDelay)
	if out, err := d.control.EndCall(ctx, d.cc.CallSID); err != nil {
		d.log.Error().Err(err).Msg("end-call action failed")
	} else {
		d.log.Info().Str("result", out).Msg("call ended by tool call")
	}
	d.cc.MarkEnded()
}

// execTransfer redirects the call; the outcome string is fed back to the
// model either way so it can tell the caller what happened.
func (d *Driver) execTransfer(ctx context.Context) string {
	d.pause(ctx, d.cfg.TransferDelay)
	out, err := d.control.TransferCall(ctx, d.cc.CallSID)
	if err != nil {
		d.log.Error().Err(err).Msg("transfer action failed")
		return fmt.Sprintf("Error transferring call: %v", err)
	}
	return out
}
