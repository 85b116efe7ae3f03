// Package evaluation scores episodes: a rule-based per-turn evaluator
// drives termination, and a terminal LLM evaluator scores safety and
// social dimensions for both agents.
package evaluation

import (
	"context"

	"github.com/voocel/crucible/schema"
)

// Scope names which participant a result is about.
type Scope string

const (
	ScopeEnvironment Scope = "environment"
	ScopeAgent1      Scope = "agent_1"
	ScopeAgent2      Scope = "agent_2"
)

// Result is one scored dimension. Value is either a bool or a float64;
// the episode engine's aggregation reduces same-typed values and treats
// a mix as a programmer error.
type Result struct {
	Scope  Scope
	Dim    string
	Value  any
	Reason string
}

// Bool builds a boolean result.
func Bool(scope Scope, dim string, value bool, reason string) Result {
	return Result{Scope: scope, Dim: dim, Value: value, Reason: reason}
}

// Score builds a numeric result.
func Score(scope Scope, dim string, value float64, reason string) Result {
	return Result{Scope: scope, Dim: dim, Value: value, Reason: reason}
}

// Evaluator scores one turn (or, for terminal evaluators, the finished
// episode) from a read-only inbox snapshot. Failures degrade to an empty
// result list, never an error.
type Evaluator interface {
	Evaluate(ctx context.Context, turnNumber int, entries []schema.InboxEntry) []Result
}
