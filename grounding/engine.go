package grounding

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/voocel/crucible/llm"
	"github.com/voocel/crucible/schema"
	"github.com/voocel/crucible/tools"
)

// Engine turns the AI agent's tool calls into simulated observations:
// decode, validate inputs, generate with the LLM, validate the result.
type Engine struct {
	registry *tools.Registry
	gen      *Generator
	rep      *Repairer
	logger   hclog.Logger

	toolkits []*tools.Toolkit
	enabled  map[string]*tools.Spec
	guide    string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRegistry points the engine at a registry other than the default.
func WithRegistry(r *tools.Registry) EngineOption {
	return func(e *Engine) { e.registry = r }
}

// WithEngineLogger sets the engine logger.
func WithEngineLogger(logger hclog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a grounding engine bound to an LLM client and model.
func NewEngine(client llm.Client, model string, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: tools.Default,
		logger:   hclog.NewNullLogger(),
		enabled:  make(map[string]*tools.Spec),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.gen = NewGenerator(client, model, e.logger)
	e.rep = NewRepairer(client, model, e.logger)
	return e
}

// Init resolves the scenario's toolkits and returns the tool prompt block
// for the AI agent's scenario view. An empty string means the scenario
// enables no tools.
func (e *Engine) Init(toolkitNames []string, guide string, shareObservation bool) string {
	e.toolkits = e.registry.ToolkitsByName(toolkitNames)
	e.guide = guide
	e.enabled = make(map[string]*tools.Spec)
	for _, tk := range e.toolkits {
		for _, tool := range tk.Tools {
			e.enabled[tool.Name] = tool
		}
	}
	if len(e.toolkits) == 0 {
		return ""
	}
	return tools.RenderPrompt(e.toolkits, shareObservation)
}

// HasTools reports whether the scenario enabled any toolkit.
func (e *Engine) HasTools() bool { return len(e.enabled) > 0 }

// OnTurn inspects the current turn's window of the inbox and produces at
// most one simulated observation. Turns without a tool call yield the
// empty observation.
func (e *Engine) OnTurn(ctx context.Context, entries []schema.InboxEntry) []schema.SimulatedObservation {
	window := schema.CurrentTurnWindow(entries)

	var action *schema.AgentAction
	for i := len(window) - 1; i >= 0; i-- {
		if a, ok := window[i].Message.(schema.AgentAction); ok && a.Type == schema.ActionTool {
			action = &a
			break
		}
	}
	if action == nil {
		return []schema.SimulatedObservation{{}}
	}

	call, err := action.DecodeToolCall()
	if err != nil {
		e.logger.Debug("undecodable tool call", "error", err)
		return e.reject("InvalidRequestException: current action is not allowed")
	}

	spec, ok := e.enabled[call.Tool]
	if !ok {
		return e.reject(fmt.Sprintf(
			"InvalidRequestException: the tool %s is not available. Available tools: %s",
			call.Tool, strings.Join(tools.ToolNames(e.toolkits), ", ")))
	}

	if err := tools.ValidateInput(spec, call.ToolInput); err != nil {
		return e.reject("InvalidRequestException: " + err.Error())
	}

	history := schema.RenderHistoryForEnvironment(entries)
	obs := e.gen.Generate(ctx, history, spec, e.toolkitDescription(spec.Toolkit), e.guide, call)

	if ok, corrected := e.rep.Validate(ctx, obs.Observation, spec); !ok {
		obs.Observation = corrected
	}
	return []schema.SimulatedObservation{obs}
}

func (e *Engine) reject(message string) []schema.SimulatedObservation {
	return []schema.SimulatedObservation{schema.ErrorObservation(message)}
}

func (e *Engine) toolkitDescription(name string) string {
	for _, tk := range e.toolkits {
		if tk.Name == name {
			return tk.Describe(tools.DetailMedium)
		}
	}
	return ""
}
