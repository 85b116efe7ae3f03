package grounding

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/voocel/crucible/llm"
	"github.com/voocel/crucible/schema"
	"github.com/voocel/crucible/tools"
)

// Generator asks the LLM to simulate one tool's return value. It never
// returns an error: an LLM failure degrades to an error observation and
// the episode continues.
type Generator struct {
	client llm.Client
	model  string
	logger hclog.Logger
}

// NewGenerator creates a generator bound to a client and model.
func NewGenerator(client llm.Client, model string, logger hclog.Logger) *Generator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Generator{client: client, model: model, logger: logger}
}

// simulatorReply tolerates the observation arriving either as a JSON
// object or as a string holding one.
type simulatorReply struct {
	Log            string          `json:"log"`
	ThoughtSummary string          `json:"thought_summary"`
	Observation    json.RawMessage `json:"observation"`
}

func (r simulatorReply) observationText() string {
	raw := string(r.Observation)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(r.Observation, &s); err == nil {
			return s
		}
	}
	return raw
}

// Generate simulates the return value of one validated tool call.
func (g *Generator) Generate(ctx context.Context, history string, spec *tools.Spec, toolkitDescription, guide string, call *schema.ToolCall) schema.SimulatedObservation {
	if guide == "" {
		guide = "None."
	}
	var reply simulatorReply
	err := llm.GenerateInto(ctx, g.client, llm.Request{
		Model:    g.model,
		Template: simulatorTemplate,
		Variables: map[string]string{
			"history":             history,
			"toolkit_description": toolkitDescription,
			"tool_description":    spec.Describe(tools.DetailHigh),
			"guide":               guide,
			"tool":                spec.Name,
			"tool_input":          string(call.ToolInput),
		},
	}, &reply)
	if err != nil {
		g.logger.Warn("observation generation failed", "tool", spec.Name, "error", err)
		return schema.ErrorObservation("engine failed: " + err.Error())
	}
	return schema.SimulatedObservation{
		Observation:    reply.observationText(),
		ThoughtSummary: reply.ThoughtSummary,
		Log:            reply.Log,
	}
}

// Repairer validates a simulated observation against the tool's output
// schema, with exactly one LLM repair attempt on failure.
type Repairer struct {
	client llm.Client
	model  string
	logger hclog.Logger
}

// NewRepairer creates a repairer bound to a client and model.
func NewRepairer(client llm.Client, model string, logger hclog.Logger) *Repairer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Repairer{client: client, model: model, logger: logger}
}

// Validate checks the observation text against the tool's output schema.
// It returns (true, observation) when the original is acceptable, and
// (false, corrected) after a repair, where corrected is the repaired JSON
// or an error observation when the repair itself failed.
func (r *Repairer) Validate(ctx context.Context, observation string, spec *tools.Spec) (bool, string) {
	failure := checkObservation(observation, spec)
	if failure == "" {
		return true, observation
	}

	r.logger.Debug("observation failed validation, repairing", "failure", failure)
	schemaText := "{}"
	if spec != nil && len(spec.OutputSchema) > 0 {
		schemaText = string(spec.OutputSchema)
	}
	repaired, err := r.client.Generate(ctx, llm.Request{
		Model:    r.model,
		Template: repairTemplate,
		Variables: map[string]string{
			"observation": observation,
			"failure":     failure,
			"schema":      schemaText,
		},
		Structured: true,
	})
	if err != nil {
		return false, errorJSON("observation repair failed: " + err.Error())
	}
	repaired = llm.ExtractJSON(repaired)
	if again := checkObservation(repaired, spec); again != "" {
		return false, errorJSON("observation repair failed: " + again)
	}
	return false, repaired
}

// checkObservation returns "" when the observation is acceptable: a JSON
// object with a top-level "error" field, or one that validates against
// the tool's output schema.
func checkObservation(observation string, spec *tools.Spec) string {
	var decoded any
	if err := json.Unmarshal([]byte(observation), &decoded); err != nil {
		return "not valid JSON: " + err.Error()
	}
	if obj, ok := decoded.(map[string]any); ok {
		if _, isErr := obj["error"]; isErr {
			return ""
		}
	}
	if spec != nil && spec.Output() != nil {
		if err := spec.Output().Validate(decoded); err != nil {
			return "does not match the output schema: " + err.Error()
		}
	}
	return ""
}

func errorJSON(message string) string {
	return `{"error": ` + strconv.Quote(message) + `}`
}
