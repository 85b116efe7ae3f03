package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func venmoSendSpec() Spec {
	return Spec{
		Name:    "VenmoSendMoney",
		Toolkit: "Venmo",
		Summary: "Send money to a user.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"recipient_username": {"type": "string", "description": "The username of the recipient."},
				"amount": {"type": "number", "exclusiveMinimum": 0, "description": "The amount to send."},
				"note": {"type": "string", "description": "An optional note."}
			},
			"required": ["recipient_username", "amount"],
			"additionalProperties": false
		}`),
		OutputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"success": {"type": "boolean"},
				"transaction_id": {"type": "string"}
			},
			"required": ["success"]
		}`),
		ErrorKinds: []string{"InvalidRequestException"},
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.DescribeToolkit("Venmo", "Peer-to-peer payments.")
	require.NoError(t, r.Register(venmoSendSpec()))

	spec, ok := r.Tool("VenmoSendMoney")
	require.True(t, ok)
	assert.Equal(t, "Venmo", spec.Toolkit)

	_, ok = r.Tool("NoSuchTool")
	assert.False(t, ok)

	assert.Equal(t, []string{"Venmo"}, r.ToolkitNames())
}

func TestRegistryDuplicateReplaces(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(venmoSendSpec()))

	dup := venmoSendSpec()
	dup.Summary = "Send money, updated."
	require.NoError(t, r.Register(dup))

	toolkits := r.ToolkitsByName([]string{"Venmo"})
	require.Len(t, toolkits, 1)
	require.Len(t, toolkits[0].Tools, 1)
	assert.Equal(t, "Send money, updated.", toolkits[0].Tools[0].Summary)
}

func TestRegistrySkipsUnknownToolkit(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(venmoSendSpec()))

	toolkits := r.ToolkitsByName([]string{"Venmo", "Hogwarts"})
	require.Len(t, toolkits, 1)
	assert.Equal(t, "Venmo", toolkits[0].Name)
}

func TestRegistryOutputSchemas(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(venmoSendSpec()))

	schemas := r.OutputSchemasByName([]string{"Venmo"})
	require.Contains(t, schemas, "VenmoSendMoney")
	assert.NoError(t, schemas["VenmoSendMoney"].Validate(map[string]any{"success": true}))
	assert.Error(t, schemas["VenmoSendMoney"].Validate(map[string]any{"transaction_id": "tx1"}))
}

func TestRegisterRejectsBadSchema(t *testing.T) {
	spec := venmoSendSpec()
	spec.InputSchema = json.RawMessage(`{"type": `)
	assert.Error(t, NewRegistry().Register(spec))

	spec = venmoSendSpec()
	spec.Name = ""
	assert.Error(t, NewRegistry().Register(spec))
}

func TestDescribeLevels(t *testing.T) {
	spec := venmoSendSpec()
	spec.Description = "Sends money immediately."
	require.NoError(t, spec.compile())

	low := spec.Describe(DetailLow)
	assert.Equal(t, "* VenmoSendMoney: Send money to a user.", low)

	medium := spec.Describe(DetailMedium)
	assert.Contains(t, medium, "Arguments:")
	assert.Contains(t, medium, "- amount (number): The amount to send.")
	assert.Contains(t, medium, "- note (string, optional): An optional note.")
	assert.Contains(t, medium, "Returns:")
	assert.NotContains(t, medium, "Sends money immediately.")

	high := spec.Describe(DetailHigh)
	assert.Contains(t, high, "Sends money immediately.")
	assert.Contains(t, high, "Exceptions: InvalidRequestException")
}

func TestRenderPrompt(t *testing.T) {
	r := NewRegistry()
	r.DescribeToolkit("Venmo", "Peer-to-peer payments.")
	require.NoError(t, r.Register(venmoSendSpec()))

	prompt := RenderPrompt(r.ToolkitsByName([]string{"Venmo"}), false)
	assert.Contains(t, prompt, "VenmoSendMoney")
	assert.Contains(t, prompt, "<Venmo> Peer-to-peer payments.")
	assert.Contains(t, prompt, "only visible to you")

	shared := RenderPrompt(r.ToolkitsByName([]string{"Venmo"}), true)
	assert.Contains(t, shared, "visible to all agents")
}
