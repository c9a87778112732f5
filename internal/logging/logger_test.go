package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")
	require.NotNil(t, log)

	log.Info().Msg("test message")
	assert.Contains(t, buf.String(), "test message")
}

func TestNewDefaultWriter(t *testing.T) {
	// nil writer should default to stderr console writer
	log := New(nil, "info")
	require.NotNil(t, log)
}

func TestSub(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")
	sub := log.Sub("agent")
	require.NotNil(t, sub)

	sub.Info().Msg("sub message")
	output := buf.String()
	assert.Contains(t, output, "sub message")
	assert.Contains(t, output, "agent")
}

func TestWithCall(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.WithCall("CA123").Info().Msg("call message")
	output := buf.String()
	assert.Contains(t, output, "CA123")
	assert.Contains(t, output, "callSid")
}

func TestWithCallEmptySID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.WithCall("").Info().Msg("no call")
	assert.NotContains(t, buf.String(), "callSid")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Debug().Msg("hidden")
	log.Info().Msg("also hidden")
	log.Warn().Msg("visible")

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, "visible")
}

func TestSilentLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "silent")

	log.Error().Msg("suppressed")
	assert.Empty(t, buf.String())
}
