package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnown(t *testing.T) {
	d, ok := Lookup(NameSendWhatsApp)
	require.True(t, ok)
	assert.Equal(t, KindSendWhatsApp, d.Kind)
	assert.Contains(t, d.Say, "WhatsApp")
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("order_pizza")
	assert.False(t, ok)
}

func TestDefinitionsStable(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, NameTransferCall, defs[0].Name)
	assert.Equal(t, NameEndCall, defs[1].Name)
	assert.Equal(t, NameSendWhatsApp, defs[2].Name)

	// mutating the returned slice must not affect the registry
	defs[0].Name = "mutated"
	again := Definitions()
	assert.Equal(t, NameTransferCall, again[0].Name)
}

func TestInputSchemasAreValidJSON(t *testing.T) {
	for _, d := range Definitions() {
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(d.InputSchema), &v), "schema for %s", d.Name)
		assert.Equal(t, "object", v["type"])
	}
}
