package tools

import (
	"sort"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Registry holds tool specifications keyed by (toolkit, tool). It is
// populated at process init and read-only afterwards; the episode engine
// never mutates it.
type Registry struct {
	mu          sync.RWMutex
	toolkits    map[string]*Toolkit
	byToolName  map[string]*Spec
	logger      hclog.Logger
	descriptors map[string]string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger. The default is a null logger.
func WithLogger(logger hclog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		toolkits:    make(map[string]*Toolkit),
		byToolName:  make(map[string]*Spec),
		logger:      hclog.NewNullLogger(),
		descriptors: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the process-wide registry the tool catalog registers into.
var Default = NewRegistry()

// Register adds a tool spec to the default registry.
func Register(spec Spec) error { return Default.Register(spec) }

// DescribeToolkit sets the default registry's prose for a toolkit.
func DescribeToolkit(name, description string) { Default.DescribeToolkit(name, description) }

// SetLogger replaces a registry's logger, for callers that build the
// catalog before wiring logging.
func (r *Registry) SetLogger(logger hclog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// DescribeToolkit records the toolkit-level prose used in prompts.
func (r *Registry) DescribeToolkit(name, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[name] = description
	if tk, ok := r.toolkits[name]; ok {
		tk.Description = description
	}
}

// Register validates and compiles the spec, then stores it. A duplicate
// (toolkit, tool) pair replaces the previous registration with a warning.
func (r *Registry) Register(spec Spec) error {
	if err := spec.compile(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tk, ok := r.toolkits[spec.Toolkit]
	if !ok {
		tk = &Toolkit{Name: spec.Toolkit, Description: r.descriptors[spec.Toolkit]}
		r.toolkits[spec.Toolkit] = tk
	}
	for i, existing := range tk.Tools {
		if existing.Name == spec.Name {
			r.logger.Warn("tool already registered, replacing",
				"toolkit", spec.Toolkit, "tool", spec.Name)
			tk.Tools[i] = &spec
			r.byToolName[spec.Name] = &spec
			return nil
		}
	}
	tk.Tools = append(tk.Tools, &spec)
	r.byToolName[spec.Name] = &spec
	return nil
}

// ToolkitsByName maps toolkit names to handles. Unknown names are skipped
// with a warning so a scenario with a stale toolkit list still runs.
func (r *Registry) ToolkitsByName(names []string) []*Toolkit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Toolkit, 0, len(names))
	for _, name := range names {
		tk, ok := r.toolkits[name]
		if !ok {
			r.logger.Warn("unknown toolkit, skipping", "toolkit", name)
			continue
		}
		out = append(out, tk)
	}
	return out
}

// Tool looks up a spec by tool name across all toolkits. Tool names are
// globally unique by construction of the catalog.
func (r *Registry) Tool(name string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.byToolName[name]
	return spec, ok
}

// OutputSchemasByName maps every tool in the named toolkits to its compiled
// output schema. Tools without an output schema are omitted.
func (r *Registry) OutputSchemasByName(names []string) map[string]*jsonschema.Schema {
	out := make(map[string]*jsonschema.Schema)
	for _, tk := range r.ToolkitsByName(names) {
		for _, tool := range tk.Tools {
			if tool.Output() != nil {
				out[tool.Name] = tool.Output()
			}
		}
	}
	return out
}

// ToolkitNames lists the registered toolkit names, sorted.
func (r *Registry) ToolkitNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.toolkits))
	for name := range r.toolkits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
