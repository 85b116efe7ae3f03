package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DetailLevel controls how much of a tool or toolkit description is
// rendered into prompts.
type DetailLevel string

const (
	DetailLow    DetailLevel = "low"
	DetailMedium DetailLevel = "medium"
	DetailHigh   DetailLevel = "high"
)

// Spec describes one simulated tool: its identity, prose, JSON schemas and
// error taxonomy. Execution is always simulated by the grounding layer, so
// a Spec carries no callable.
type Spec struct {
	Name         string          `json:"name"`
	Toolkit      string          `json:"toolkit"`
	Summary      string          `json:"summary"`
	Description  string          `json:"description"`
	InputSchema  json.RawMessage `json:"input_schema"`
	OutputSchema json.RawMessage `json:"output_schema"`
	ErrorKinds   []string        `json:"error_kinds"`

	input  *jsonschema.Schema
	output *jsonschema.Schema
}

func (s *Spec) compile() error {
	if s.Name == "" || s.Toolkit == "" {
		return fmt.Errorf("tools: spec needs both a tool and a toolkit name")
	}
	if len(s.InputSchema) > 0 {
		sch, err := jsonschema.CompileString(s.Toolkit+"/"+s.Name+"/input.json", string(s.InputSchema))
		if err != nil {
			return fmt.Errorf("tools: %s input schema: %w", s.Name, err)
		}
		s.input = sch
	}
	if len(s.OutputSchema) > 0 {
		sch, err := jsonschema.CompileString(s.Toolkit+"/"+s.Name+"/output.json", string(s.OutputSchema))
		if err != nil {
			return fmt.Errorf("tools: %s output schema: %w", s.Name, err)
		}
		s.output = sch
	}
	return nil
}

// Output returns the compiled output schema, or nil when the tool declares
// none.
func (s *Spec) Output() *jsonschema.Schema { return s.output }

// Describe renders the tool at the requested detail level.
func (s *Spec) Describe(level DetailLevel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* %s: %s", s.Name, s.Summary)
	if level == DetailLow {
		return b.String()
	}
	if args := renderSchemaFields(s.InputSchema); args != "" {
		b.WriteString("\n  Arguments:\n" + args)
	}
	if returns := renderSchemaFields(s.OutputSchema); returns != "" {
		b.WriteString("\n  Returns:\n" + returns)
	}
	if level == DetailMedium {
		return b.String()
	}
	if s.Description != "" {
		b.WriteString("\n  " + s.Description)
	}
	if len(s.ErrorKinds) > 0 {
		b.WriteString("\n  Exceptions: " + strings.Join(s.ErrorKinds, ", "))
	}
	return b.String()
}

// renderSchemaFields lists a JSON schema's top-level properties as
// "name (type, required): description" lines.
func renderSchemaFields(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var doc struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc.Properties) == 0 {
		return ""
	}
	required := make(map[string]bool, len(doc.Required))
	for _, name := range doc.Required {
		required[name] = true
	}
	names := make([]string, 0, len(doc.Properties))
	for name := range doc.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		prop := doc.Properties[name]
		if i > 0 {
			b.WriteByte('\n')
		}
		kind := prop.Type
		if kind == "" {
			kind = "any"
		}
		optional := ""
		if !required[name] {
			optional = ", optional"
		}
		fmt.Fprintf(&b, "    - %s (%s%s): %s", name, kind, optional, prop.Description)
	}
	return b.String()
}

// Toolkit groups the tools of one simulated service.
type Toolkit struct {
	Name        string
	Description string
	Tools       []*Spec
}

// Describe renders the toolkit with its tools at the given detail level.
func (t *Toolkit) Describe(level DetailLevel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s> %s", t.Name, t.Description)
	for _, tool := range t.Tools {
		b.WriteByte('\n')
		b.WriteString(tool.Describe(level))
	}
	return b.String()
}

// ToolNames lists every tool name across the given toolkits.
func ToolNames(toolkits []*Toolkit) []string {
	var names []string
	for _, tk := range toolkits {
		for _, tool := range tk.Tools {
			names = append(names, tool.Name)
		}
	}
	return names
}
