package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentActionNaturalLanguage(t *testing.T) {
	tests := []struct {
		name   string
		action AgentAction
		want   string
	}{
		{"none", None(), "did nothing"},
		{"speak", Speak("hello"), `said: "hello"`},
		{"leave", AgentAction{Type: ActionLeave}, "left the conversation"},
		{"non-verbal", AgentAction{Type: ActionNonVerbal, Argument: "nods"}, "[non-verbal communication] nods"},
		{"unknown kind degrades to none", AgentAction{Type: "shrug"}, "did nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.action.NaturalLanguage())
		})
	}
}

func TestDecodeToolCall(t *testing.T) {
	action := AgentAction{
		Type:     ActionTool,
		Argument: `{"tool":"VenmoSendMoney","tool_input":{"recipient_username":"amy","amount":249},"log":"pay amy"}`,
	}
	call, err := action.DecodeToolCall()
	require.NoError(t, err)
	assert.Equal(t, "VenmoSendMoney", call.Tool)
	assert.Equal(t, "pay amy", call.Log)

	var input map[string]any
	require.NoError(t, json.Unmarshal(call.ToolInput, &input))
	assert.Equal(t, float64(249), input["amount"])
}

func TestDecodeToolCallRejectsMalformed(t *testing.T) {
	_, err := Speak("hi").DecodeToolCall()
	assert.Error(t, err)

	_, err = AgentAction{Type: ActionTool, Argument: `{"tool_input":{}}`}.DecodeToolCall()
	assert.Error(t, err)

	_, err = AgentAction{Type: ActionTool, Argument: `not json`}.DecodeToolCall()
	assert.Error(t, err)
}

func TestErrorObservation(t *testing.T) {
	obs := ErrorObservation("InvalidRequestException: tool not found")
	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(obs.Observation), &payload))
	assert.Equal(t, "InvalidRequestException: tool not found", payload["error"])
	assert.False(t, obs.Empty())
}

func TestCurrentTurnWindow(t *testing.T) {
	var inbox Inbox
	inbox.Append(EnvironmentRole, TurnDelimiter(1))
	inbox.Append("Ava", Speak("pay my friends"))
	inbox.Append(EnvironmentRole, TurnDelimiter(2))
	inbox.Append("Aria", AgentAction{Type: ActionTool, Argument: `{"tool":"VenmoSendMoney","tool_input":{}}`})

	window := CurrentTurnWindow(inbox.Snapshot())
	require.Len(t, window, 1)
	assert.Equal(t, "Aria", window[0].Sender)
}

func TestRenderHistoryDropsDidNothing(t *testing.T) {
	var inbox Inbox
	inbox.Append(EnvironmentRole, TurnDelimiter(1))
	inbox.Append("Ava", Speak("hello"))
	inbox.Append("Aria", None())

	history := RenderHistory(inbox.Snapshot())
	assert.Contains(t, history, "Turn #1")
	assert.Contains(t, history, `Ava said: "hello"`)
	assert.NotContains(t, history, "did nothing")
}

func TestRenderHistoryForEnvironmentInsertsHeader(t *testing.T) {
	var inbox Inbox
	inbox.Append(EnvironmentRole, SimpleMessage{Text: "#### Scenario: a quiet evening"})
	inbox.Append(EnvironmentRole, TurnDelimiter(1))
	inbox.Append("Ava", Speak("hello"))

	history := RenderHistoryForEnvironment(inbox.Snapshot())
	lines := []string{
		"#### Scenario: a quiet evening",
		"#### Interaction history",
		"Turn #1",
		`Ava said: "hello"`,
	}
	for _, line := range lines {
		assert.Contains(t, history, line)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	var inbox Inbox
	inbox.Append(EnvironmentRole, TurnDelimiter(1))
	snap := inbox.Snapshot()
	inbox.Append("Ava", Speak("later"))
	assert.Len(t, snap, 1)
}
