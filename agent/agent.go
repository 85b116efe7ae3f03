// Package agent implements the two episode participants: a human-role
// agent limited to conversational actions and an AI-role agent that may
// also call tools.
package agent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/voocel/crucible/llm"
	"github.com/voocel/crucible/schema"
)

// Actor is what the episode engine drives each turn: deliver messages,
// solicit an action.
type Actor interface {
	Name() string
	Goal() string
	Recv(sender string, msg schema.Message)
	Act(ctx context.Context, obs schema.Observation) schema.AgentAction
}

// Config carries the fields shared by both agent kinds.
type Config struct {
	Name   string
	Goal   string
	Model  string
	Client llm.Client
	Logger hclog.Logger
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
}

type base struct {
	Config
	inbox schema.Inbox
}

func (b *base) Name() string { return b.Config.Name }
func (b *base) Goal() string { return b.Config.Goal }

// Recv appends to the agent's private transcript. The engine has already
// filtered the message to this agent's viewer tag.
func (b *base) Recv(sender string, msg schema.Message) {
	b.inbox.Append(sender, msg)
}

// context returns the initial scenario text; history the turns after it.
func (b *base) context() string {
	if len(b.inbox) == 0 {
		return ""
	}
	return b.inbox[0].Message.NaturalLanguage()
}

func (b *base) history() string {
	if len(b.inbox) <= 1 {
		return ""
	}
	return schema.RenderHistory(b.inbox[1:])
}

// actionWire tolerates the argument arriving as a JSON object (tool
// calls) or a plain string (everything else).
type actionWire struct {
	Type     schema.ActionType `json:"action_type"`
	Argument json.RawMessage   `json:"argument"`
}

func (w actionWire) action() schema.AgentAction {
	raw := string(w.Argument)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(w.Argument, &s); err == nil {
			return schema.AgentAction{Type: w.Type, Argument: s}
		}
	}
	return schema.AgentAction{Type: w.Type, Argument: raw}
}

func renderActionTypes(types []schema.ActionType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func allowed(t schema.ActionType, available []schema.ActionType) bool {
	for _, a := range available {
		if a == t {
			return true
		}
	}
	return false
}

func (b *base) generateAction(ctx context.Context, tmpl llm.PromptTemplate, obs schema.Observation) (schema.AgentAction, error) {
	var wire actionWire
	err := llm.GenerateInto(ctx, b.Client, llm.Request{
		Model:    b.Model,
		Template: tmpl,
		Variables: map[string]string{
			"name":         b.Config.Name,
			"context":      b.context(),
			"history":      b.history(),
			"turn_number":  jsonNumber(obs.TurnNumber),
			"action_types": renderActionTypes(obs.AvailableActions),
		},
	}, &wire)
	if err != nil {
		return schema.None(), err
	}
	return wire.action(), nil
}

func jsonNumber(n int) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}

// HumanAgent plays the human participant. It never emits tool calls.
type HumanAgent struct {
	base
}

// NewHumanAgent creates a human-role agent.
func NewHumanAgent(cfg Config) *HumanAgent {
	cfg.setDefaults()
	return &HumanAgent{base: base{Config: cfg}}
}

// Act records the observation and produces this turn's action. A masked
// turn returns none without touching the LLM; so does an LLM failure or
// an action kind outside the human set.
func (h *HumanAgent) Act(ctx context.Context, obs schema.Observation) schema.AgentAction {
	h.Recv(schema.EnvironmentRole, obs)
	if obs.OnlyNoneAvailable() {
		return schema.None()
	}
	action, err := h.generateAction(ctx, humanTemplate, obs)
	if err != nil {
		h.Logger.Warn("human agent generation failed", "agent", h.Config.Name, "error", err)
		return schema.None()
	}
	if !allowed(action.Type, obs.AvailableActions) || action.Type == schema.ActionTool {
		h.Logger.Debug("coercing disallowed action to none", "agent", h.Config.Name, "type", action.Type)
		return schema.None()
	}
	return action
}

// AIAgent plays the AI assistant. Tool-call arguments get one LLM repair
// round-trip before the grounding engine sees them.
type AIAgent struct {
	base
}

// NewAIAgent creates an AI-role agent.
func NewAIAgent(cfg Config) *AIAgent {
	cfg.setDefaults()
	return &AIAgent{base: base{Config: cfg}}
}

// Act records the observation and produces this turn's action.
func (a *AIAgent) Act(ctx context.Context, obs schema.Observation) schema.AgentAction {
	a.Recv(schema.EnvironmentRole, obs)
	if obs.OnlyNoneAvailable() {
		return schema.None()
	}
	action, err := a.generateAction(ctx, aiTemplate, obs)
	if err != nil {
		a.Logger.Warn("ai agent generation failed", "agent", a.Config.Name, "error", err)
		return schema.None()
	}
	if !allowed(action.Type, obs.AvailableActions) {
		a.Logger.Debug("coercing disallowed action to none", "agent", a.Config.Name, "type", action.Type)
		return schema.None()
	}
	if action.Type == schema.ActionTool {
		action = a.repairToolCall(ctx, action)
	}
	return action
}

// repairToolCall asks the LLM to reshape a malformed tool-call argument
// once. A second failure returns the original action; the grounding
// engine will answer it with an error observation.
func (a *AIAgent) repairToolCall(ctx context.Context, action schema.AgentAction) schema.AgentAction {
	_, err := action.DecodeToolCall()
	if err == nil {
		return action
	}
	repaired, genErr := a.Client.Generate(ctx, llm.Request{
		Model:    a.Model,
		Template: toolRepairTemplate,
		Variables: map[string]string{
			"argument": action.Argument,
			"failure":  err.Error(),
		},
		Structured: true,
	})
	if genErr != nil {
		a.Logger.Warn("tool call repair failed", "agent", a.Config.Name, "error", genErr)
		return action
	}
	candidate := schema.AgentAction{Type: schema.ActionTool, Argument: llm.ExtractJSON(repaired)}
	if _, err := candidate.DecodeToolCall(); err != nil {
		a.Logger.Debug("tool call still malformed after repair", "agent", a.Config.Name, "error", err)
		return action
	}
	return candidate
}
