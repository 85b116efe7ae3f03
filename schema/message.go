package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ActionType enumerates the kinds of actions an agent can take in a turn.
type ActionType string

const (
	ActionNone      ActionType = "none"
	ActionSpeak     ActionType = "speak"
	ActionNonVerbal ActionType = "non-verbal communication"
	ActionTool      ActionType = "action"
	ActionLeave     ActionType = "leave"
)

// HumanActionTypes is the fixed kind set available to the human-role agent.
// Tool calls are reserved for the AI-role agent.
func HumanActionTypes() []ActionType {
	return []ActionType{ActionNone, ActionSpeak, ActionNonVerbal, ActionLeave}
}

// AllActionTypes is the full kind set, available to the AI-role agent when
// the scenario enables tools.
func AllActionTypes() []ActionType {
	return []ActionType{ActionNone, ActionSpeak, ActionNonVerbal, ActionTool, ActionLeave}
}

// Message is the tagged variant shared by everything that flows through the
// inbox: turn delimiters, environment observations, agent actions and
// simulated tool observations.
type Message interface {
	NaturalLanguage() string
}

// SimpleMessage carries plain environment text, e.g. the "Turn #3" delimiter.
type SimpleMessage struct {
	Text string `json:"text"`
}

func (m SimpleMessage) NaturalLanguage() string { return m.Text }

// Observation is what the engine hands each agent at the start of a turn.
// LastTurn is already filtered to the receiving agent's viewer tag.
type Observation struct {
	LastTurn         string       `json:"last_turn"`
	TurnNumber       int          `json:"turn_number"`
	AvailableActions []ActionType `json:"available_actions"`
}

func (o Observation) NaturalLanguage() string { return o.LastTurn }

// OnlyNoneAvailable reports whether the agent is masked out this turn.
func (o Observation) OnlyNoneAvailable() bool {
	return len(o.AvailableActions) == 1 && o.AvailableActions[0] == ActionNone
}

// AgentAction is a single agent decision. When Type is ActionTool the
// Argument decodes as a ToolCall.
type AgentAction struct {
	Type     ActionType `json:"action_type"`
	Argument string     `json:"argument"`
}

func (a AgentAction) NaturalLanguage() string {
	switch a.Type {
	case ActionSpeak:
		return fmt.Sprintf("said: \"%s\"", a.Argument)
	case ActionNonVerbal, ActionTool:
		return fmt.Sprintf("[%s] %s", a.Type, a.Argument)
	case ActionLeave:
		return "left the conversation"
	default:
		return "did nothing"
	}
}

// None is the absent action, substituted whenever an agent is masked out or
// its LLM call fails.
func None() AgentAction {
	return AgentAction{Type: ActionNone}
}

// Speak builds a speech action.
func Speak(utterance string) AgentAction {
	return AgentAction{Type: ActionSpeak, Argument: utterance}
}

// ToolCall is the decoded payload of an ActionTool argument.
type ToolCall struct {
	Tool      string          `json:"tool"`
	ToolInput json.RawMessage `json:"tool_input"`
	Log       string          `json:"log"`
}

// DecodeToolCall decodes the action argument as a tool call. It fails for
// non-tool actions and for malformed payloads.
func (a AgentAction) DecodeToolCall() (*ToolCall, error) {
	if a.Type != ActionTool {
		return nil, fmt.Errorf("schema: action type %q is not a tool call", a.Type)
	}
	var call ToolCall
	dec := json.NewDecoder(strings.NewReader(a.Argument))
	if err := dec.Decode(&call); err != nil {
		return nil, fmt.Errorf("schema: decode tool call: %w", err)
	}
	if call.Tool == "" {
		return nil, fmt.Errorf("schema: tool call is missing the tool name")
	}
	return &call, nil
}

// SimulatedObservation is the grounding layer's answer to a tool call.
// Observation is a JSON object matching the tool's output schema, or the
// {"error": ...} shape for rejected calls.
type SimulatedObservation struct {
	Observation    string `json:"observation"`
	ThoughtSummary string `json:"thought_summary"`
	Log            string `json:"log"`
}

func (o SimulatedObservation) NaturalLanguage() string {
	return "Observation: \n" + o.Observation
}

// Empty reports whether this is the placeholder observation emitted on turns
// without a tool call.
func (o SimulatedObservation) Empty() bool { return o.Observation == "" }

// ErrorObservation wraps a rejection message in the error observation shape.
func ErrorObservation(message string) SimulatedObservation {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return SimulatedObservation{Observation: string(payload)}
}
