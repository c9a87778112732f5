package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxline/voxline/internal/call"
	"github.com/voxline/voxline/internal/llm"
	"github.com/voxline/voxline/internal/tools"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-06-15", "2024-06-15", true},
		{"15 June 2024", "2024-06-15", true},
		{"3 Jan 2025", "2025-01-03", true},
		{"tomorrow", "", false},
		{"15th June 2024", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizeDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"14:30", "14:30", true},
		{"2:30 pm", "14:30", true},
		{"2:30 PM", "14:30", true},
		{"9:05 am", "09:05", true},
		{"noonish", "", false},
	}
	for _, tt := range tests {
		got, ok := normalizeTime(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestImplicitAppointmentExtraction(t *testing.T) {
	h := newHarness(t, fixedReply("Great, your appointment is set for 2024-06-15 at 14:30."))

	require.NoError(t, h.driver.Respond(context.Background(), "book it", 1, call.RoleUser, "user"))

	assert.Equal(t, "2024-06-15", h.cc.AppointmentDate)
	assert.Equal(t, "14:30", h.cc.AppointmentTime)
	assert.True(t, h.cc.DateTimeConfirmed)
	// extraction does not consume the turn
	assert.NotEmpty(t, h.emits.indexed())
}

func TestImplicitExtractionSpelledForms(t *testing.T) {
	h := newHarness(t, fixedReply("Your appointment will be 15 June 2024 at 2:30 pm."))

	require.NoError(t, h.driver.Respond(context.Background(), "ok", 1, call.RoleUser, "user"))

	assert.Equal(t, "2024-06-15", h.cc.AppointmentDate)
	assert.Equal(t, "14:30", h.cc.AppointmentTime)
}

func TestImplicitExtractionDropsUnparseable(t *testing.T) {
	h := newHarness(t, fixedReply("Your appointment will be 15th June 2024 then."))

	require.NoError(t, h.driver.Respond(context.Background(), "ok", 1, call.RoleUser, "user"))

	assert.Empty(t, h.cc.AppointmentDate)
	assert.False(t, h.cc.DateTimeConfirmed)
	assert.NotEmpty(t, h.emits.indexed())
}

func TestNegativeAfterAnythingElseClosesCall(t *testing.T) {
	h := newHarness(t, fixedReply("No, that's everything for today."))
	h.cc.AskedAnythingElse = true

	require.NoError(t, h.driver.Respond(context.Background(), "nothing else", 3, call.RoleUser, "user"))

	assert.Equal(t, []string{defaultClosing}, h.emits.spoken())
	assert.Empty(t, h.emits.indexed())
	assert.Equal(t, 1, h.control.endCalls)
	assert.True(t, h.cc.LastResponseWasNo)
	assert.True(t, h.cc.ConversationEnded)
	assert.NotNil(t, h.cc.EndTime)
	// the turn is fully handled, no assistant turn is recorded
	require.Len(t, h.cc.Turns, 3)
}

func TestNegativeWithoutAnythingElseStreamsNormally(t *testing.T) {
	h := newHarness(t, fixedReply("No problem, I can call back later."))

	require.NoError(t, h.driver.Respond(context.Background(), "call me later", 2, call.RoleUser, "user"))

	assert.Equal(t, 0, h.control.endCalls)
	assert.False(t, h.cc.ConversationEnded)
	assert.NotEmpty(t, h.emits.indexed())
}

func TestSendWhatsAppMarker(t *testing.T) {
	h := newHarness(t, fixedReply(`Perfect! [send_whatsapp({"message": "Your *site visit* is confirmed"})]`))
	h.cc.UserPhone = "+919812345678"

	require.NoError(t, h.driver.Respond(context.Background(), "yes, send it", 4, call.RoleUser, "user"))

	whatsappDef, _ := tools.Lookup(tools.NameSendWhatsApp)
	assert.Equal(t, []string{whatsappDef.Say, sentConfirmLine}, h.emits.spoken())
	assert.Empty(t, h.emits.indexed())
	require.Len(t, h.notifier.sends, 1)
	assert.Equal(t, "+919812345678|Your *site visit* is confirmed", h.notifier.sends[0])
	assert.True(t, h.cc.WhatsappSent)
	assert.True(t, h.cc.AskedAnythingElse)
}

func TestSendWhatsAppRecipientFromContacts(t *testing.T) {
	h := newHarness(t, fixedReply(`[send_whatsapp({"message": "Details inside"})]`))

	require.NoError(t, h.driver.Respond(context.Background(), "send it", 4, call.RoleUser, "user"))

	require.Len(t, h.notifier.sends, 1)
	assert.Equal(t, "+919876543210|Details inside", h.notifier.sends[0])
}

func TestSendWhatsAppDuplicateSuppressed(t *testing.T) {
	h := newHarness(t, fixedReply(`[send_whatsapp({"message": "again"})]`))
	h.cc.WhatsappSent = true

	require.NoError(t, h.driver.Respond(context.Background(), "send again", 5, call.RoleUser, "user"))

	assert.Equal(t, []string{alreadySentLine}, h.emits.spoken())
	assert.Empty(t, h.notifier.sends)
	assert.True(t, h.cc.AskedAnythingElse)
}

func TestSendWhatsAppMalformedArgs(t *testing.T) {
	h := newHarness(t, fixedReply(`[send_whatsapp(not json at all)]`))
	h.cc.UserPhone = "+919812345678"

	require.NoError(t, h.driver.Respond(context.Background(), "send", 4, call.RoleUser, "user"))

	// empty args mean an empty message, which the dispatcher rejects
	require.Len(t, h.emits.spoken(), 2)
	assert.Contains(t, h.emits.spoken()[1], sendApologyLine)
	assert.Empty(t, h.notifier.sends)
	assert.False(t, h.cc.WhatsappSent)
}

func TestSendWhatsAppNoRecipientAvailable(t *testing.T) {
	h := newHarness(t, fixedReply(`[send_whatsapp({"message": "hi"})]`))
	h.driver.contacts = &stubContacts{err: errors.New("no phone number found in contact data")}

	require.NoError(t, h.driver.Respond(context.Background(), "send", 4, call.RoleUser, "user"))

	require.Len(t, h.emits.spoken(), 2)
	assert.Contains(t, h.emits.spoken()[1], "no phone number available")
	assert.False(t, h.cc.WhatsappSent)
}

func TestSendWhatsAppDispatchFailure(t *testing.T) {
	h := newHarness(t, fixedReply(`[send_whatsapp({"message": "hi"})]`))
	h.cc.UserPhone = "+919812345678"
	h.notifier.sendErr = errors.New("gateway did not confirm delivery")

	require.NoError(t, h.driver.Respond(context.Background(), "send", 4, call.RoleUser, "user"))

	require.Len(t, h.emits.spoken(), 2)
	assert.Contains(t, h.emits.spoken()[1], "gateway did not confirm delivery")
	assert.False(t, h.cc.WhatsappSent)
}

func TestEndCallMarker(t *testing.T) {
	h := newHarness(t, fixedReply("Goodbye! [end_call()]"))

	require.NoError(t, h.driver.Respond(context.Background(), "bye", 6, call.RoleUser, "user"))

	endDef, _ := tools.Lookup(tools.NameEndCall)
	assert.Equal(t, []string{endDef.Say}, h.emits.spoken())
	assert.Equal(t, 1, h.control.endCalls)
	assert.True(t, h.cc.ConversationEnded)
}

func TestTransferMarkerFeedsResultBack(t *testing.T) {
	calls := 0
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			if calls == 1 {
				return &llm.CompletionResponse{Content: "[transfer_call()]"}, nil
			}
			return &llm.CompletionResponse{Content: "You will be connected shortly."}, nil
		},
	}
	h := newHarness(t, client)

	require.NoError(t, h.driver.Respond(context.Background(), "talk to a human", 2, call.RoleUser, "user"))

	transferDef, _ := tools.Lookup(tools.NameTransferCall)
	assert.Equal(t, 1, h.control.transferCalls)
	assert.Equal(t, []string{transferDef.Say}, h.emits.spoken())
	assert.Equal(t, []string{"You will be connected shortly."}, h.emits.indexed())

	// history: seed(2), user, assistant ack, function result, assistant reply
	require.Len(t, h.cc.Turns, 6)
	fn := h.cc.Turns[4]
	assert.Equal(t, call.RoleFunction, fn.Role)
	assert.Equal(t, tools.NameTransferCall, fn.Name)
	assert.Equal(t, "Call transferred.", fn.Content)
}

func TestTransferFailureReportedToModel(t *testing.T) {
	calls := 0
	var secondTurn []llm.Message
	client := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			calls++
			if calls == 1 {
				return &llm.CompletionResponse{Content: "[transfer_call()]"}, nil
			}
			secondTurn = req.Messages
			return &llm.CompletionResponse{Content: "I could not transfer you, sorry."}, nil
		},
	}
	h := newHarness(t, client)
	h.control.transferErr = errors.New("twilio rejected the redirect")

	require.NoError(t, h.driver.Respond(context.Background(), "transfer me", 2, call.RoleUser, "user"))

	require.NotEmpty(t, secondTurn)
	last := secondTurn[len(secondTurn)-1]
	assert.Equal(t, call.RoleFunction, last.Role)
	assert.Contains(t, last.Content, "Error transferring call:")
}

func TestUnknownToolIgnored(t *testing.T) {
	h := newHarness(t, fixedReply("One moment. [make_tea({})]"))

	require.NoError(t, h.driver.Respond(context.Background(), "tea please", 2, call.RoleUser, "user"))

	assert.Empty(t, h.emits.spoken())
	assert.Equal(t, []string{"One moment.", "[make_tea({})]"}, h.emits.indexed())
	assert.False(t, h.cc.AskedAnythingElse)
	assert.Equal(t, 0, h.control.endCalls)
	assert.Equal(t, 0, h.control.transferCalls)
}

func TestOnlyFirstKnownMarkerExecutes(t *testing.T) {
	h := newHarness(t, fixedReply("[end_call()] [transfer_call()]"))

	require.NoError(t, h.driver.Respond(context.Background(), "bye", 2, call.RoleUser, "user"))

	assert.Equal(t, 1, h.control.endCalls)
	assert.Equal(t, 0, h.control.transferCalls)
}

func TestAnythingElseQuestionSetsFlag(t *testing.T) {
	h := newHarness(t, fixedReply("Is there anything else I can help you with today?"))

	require.NoError(t, h.driver.Respond(context.Background(), "thanks", 3, call.RoleUser, "user"))

	assert.True(t, h.cc.AskedAnythingElse)
	assert.NotEmpty(t, h.emits.indexed())
}
