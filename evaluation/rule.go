package evaluation

import (
	"context"
	"fmt"

	"github.com/voocel/crucible/schema"
)

// RuleBasedTerminated is the per-turn evaluator that decides whether the
// episode ends: either the turn budget ran out or the conversation went
// stale. A turn is stale when no agent produced content, counting speech,
// non-verbal communication, tool calls and leaving as content.
type RuleBasedTerminated struct {
	MaxTurn  int
	MaxStale int

	stale int
}

// NewRuleBasedTerminated creates the evaluator with the given budgets.
func NewRuleBasedTerminated(maxTurn, maxStale int) *RuleBasedTerminated {
	return &RuleBasedTerminated{MaxTurn: maxTurn, MaxStale: maxStale}
}

// Evaluate inspects the current turn window and emits the terminated flag.
func (r *RuleBasedTerminated) Evaluate(_ context.Context, turnNumber int, entries []schema.InboxEntry) []Result {
	if r.turnIsStale(entries) {
		r.stale++
	} else {
		r.stale = 0
	}

	var reason string
	terminated := false
	switch {
	case turnNumber >= r.MaxTurn:
		terminated = true
		reason = fmt.Sprintf("The episode reached the maximum of %d turns. ", r.MaxTurn)
	case r.stale >= r.MaxStale:
		terminated = true
		reason = fmt.Sprintf("The conversation stayed stale for %d turns. ", r.stale)
	case someoneLeft(entries):
		terminated = true
		reason = "An agent left the conversation. "
	}
	return []Result{Bool(ScopeEnvironment, "terminated", terminated, reason)}
}

func someoneLeft(entries []schema.InboxEntry) bool {
	for _, e := range schema.CurrentTurnWindow(entries) {
		if a, ok := e.Message.(schema.AgentAction); ok && a.Type == schema.ActionLeave {
			return true
		}
	}
	return false
}

func (r *RuleBasedTerminated) turnIsStale(entries []schema.InboxEntry) bool {
	for _, e := range schema.CurrentTurnWindow(entries) {
		if e.Sender == schema.EnvironmentRole {
			continue
		}
		if a, ok := e.Message.(schema.AgentAction); ok && a.Type != schema.ActionNone {
			return false
		}
	}
	return true
}
