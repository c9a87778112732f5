package call

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStampsStartTime(t *testing.T) {
	c := New("system", "initial")
	require.NotNil(t, c.StartTime)
	assert.WithinDuration(t, time.Now(), *c.StartTime, time.Second)
	assert.Equal(t, "system", c.SystemMessage)
	assert.Equal(t, "initial", c.InitialMessage)
}

func TestSeedConversation(t *testing.T) {
	c := New("system", "Hi, this is Riya from the sales office.")
	c.SeedConversation()

	require.Len(t, c.Turns, 2)
	assert.Equal(t, RoleUser, c.Turns[0].Role)
	assert.Equal(t, "Hello", c.Turns[0].Content)
	assert.Equal(t, RoleAssistant, c.Turns[1].Role)
	assert.Equal(t, c.InitialMessage, c.Turns[1].Content)
}

func TestUpdateScheduledRequiresAllThree(t *testing.T) {
	c := New("", "")

	require.NoError(t, c.Update(map[string]string{"date": "2024-06-15", "time": "14:30"}))
	assert.True(t, c.DateTimeConfirmed)
	assert.False(t, c.AppointmentScheduled, "two of three must not schedule")

	require.NoError(t, c.Update(map[string]string{"name": "Asha"}))
	assert.True(t, c.AppointmentScheduled)
}

func TestUpdateInvalidDateIsAtomic(t *testing.T) {
	c := New("", "")
	require.NoError(t, c.Update(map[string]string{"date": "2024-06-15", "time": "14:30", "name": "Asha"}))

	err := c.Update(map[string]string{"date": "2024-13-40", "name": "Mallory"})
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)

	// nothing mutated, including the valid name in the same batch
	assert.Equal(t, "2024-06-15", c.AppointmentDate)
	assert.Equal(t, "Asha", c.UserName)
	assert.True(t, c.AppointmentScheduled)
}

func TestUpdateCanonicalizesDateAndTime(t *testing.T) {
	c := New("", "")

	// non-padded components parse, but must be stored padded
	require.NoError(t, c.Update(map[string]string{"date": "2024-6-5", "time": "9:30"}))
	assert.Equal(t, "2024-06-05", c.AppointmentDate)
	assert.Equal(t, "09:30", c.AppointmentTime)
	assert.True(t, c.DateTimeConfirmed)
}

func TestUpdateInvalidTime(t *testing.T) {
	c := New("", "")
	err := c.Update(map[string]string{"time": "25:99"})
	require.Error(t, err)
	assert.Empty(t, c.AppointmentTime)
	assert.False(t, c.DateTimeConfirmed)
}

func TestCanDispatchNotificationOrder(t *testing.T) {
	c := New("", "")

	ok, reason := c.CanDispatchNotification()
	assert.False(t, ok)
	assert.Equal(t, ReasonWhatsAppNotConfirmed, reason)

	c.WhatsappConfirmed = true
	ok, reason = c.CanDispatchNotification()
	assert.False(t, ok)
	assert.Equal(t, ReasonDateTimeNotConfirmed, reason)

	require.NoError(t, c.Update(map[string]string{"date": "2024-06-15", "time": "14:30"}))
	ok, reason = c.CanDispatchNotification()
	assert.False(t, ok)
	assert.Equal(t, ReasonMissingName, reason)

	require.NoError(t, c.Update(map[string]string{"name": "Asha"}))
	ok, reason = c.CanDispatchNotification()
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestResetConversationFlags(t *testing.T) {
	c := New("", "")
	require.NoError(t, c.Update(map[string]string{"date": "2024-06-15"}))
	c.AskedAnythingElse = true
	c.LastResponseWasNo = true

	c.ResetConversationFlags()
	assert.False(t, c.AskedAnythingElse)
	assert.False(t, c.LastResponseWasNo)
	assert.Equal(t, "2024-06-15", c.AppointmentDate, "appointment fields survive reset")
}

func TestMarkEndedIdempotent(t *testing.T) {
	c := New("", "")
	c.MarkEnded()
	require.True(t, c.ConversationEnded)
	require.True(t, c.CallEnded)
	require.NotNil(t, c.EndTime)
	first := *c.EndTime

	time.Sleep(5 * time.Millisecond)
	c.MarkEnded()
	assert.True(t, c.ConversationEnded)
	assert.False(t, c.EndTime.Before(first), "second call re-stamps the end time")
}

func TestAppendTurn(t *testing.T) {
	c := New("", "")
	c.AppendTurn(RoleUser, "hi", "user")
	c.AppendTurn(RoleFunction, "Call transferred.", "transfer_call")

	require.Len(t, c.Turns, 2)
	assert.Equal(t, "transfer_call", c.Turns[1].Name)
}
