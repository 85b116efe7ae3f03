package env

import (
	"fmt"
	"strings"

	"github.com/voocel/crucible/evaluation"
	"github.com/voocel/crucible/schema"
)

// Rate packs one agent's reduced numeric dimensions.
type Rate struct {
	Overall float64            `json:"overall"`
	Dims    map[string]float64 `json:"dims,omitempty"`
}

// Response is the merged outcome of one turn: evaluator verdicts plus at
// most one simulated tool observation.
type Response struct {
	Terminated  bool
	P1Rate      *Rate
	P2Rate      *Rate
	Comments    string
	Observation schema.SimulatedObservation
}

// aggregate merges per-turn evaluator results and grounding observations.
// The environment partition must carry a terminated bool; at most one
// non-empty observation may exist per turn. Violations are programmer
// errors and abort the episode.
func aggregate(results []evaluation.Result, observations []schema.SimulatedObservation) (*Response, error) {
	resp := &Response{}

	count := 0
	for _, o := range observations {
		if o.Empty() {
			continue
		}
		resp.Observation = o
		count++
	}
	if count > 1 {
		return nil, fmt.Errorf("env: %d simulated observations in one turn, want at most 1", count)
	}

	parts, comments, err := reduceByScope(results)
	if err != nil {
		return nil, err
	}
	resp.Comments = comments

	envPart, ok := parts[evaluation.ScopeEnvironment]
	if !ok {
		return nil, fmt.Errorf("env: no environment-scope evaluator result")
	}
	terminated, ok := envPart.bools["terminated"]
	if !ok {
		return nil, fmt.Errorf("env: environment partition is missing the terminated flag")
	}
	resp.Terminated = terminated
	resp.P1Rate = parts[evaluation.ScopeAgent1].rate()
	resp.P2Rate = parts[evaluation.ScopeAgent2].rate()
	return resp, nil
}

// mergeTerminal folds terminal evaluator results into an existing
// response: rates fill in only where still unset, comments concatenate.
func (r *Response) mergeTerminal(results []evaluation.Result) error {
	parts, comments, err := reduceByScope(results)
	if err != nil {
		return err
	}
	if comments != "" {
		r.Comments = strings.TrimSpace(r.Comments + " " + comments)
	}
	if r.P1Rate == nil {
		r.P1Rate = parts[evaluation.ScopeAgent1].rate()
	}
	if r.P2Rate == nil {
		r.P2Rate = parts[evaluation.ScopeAgent2].rate()
	}
	return nil
}

// partition is one scope's dimension-wise reduction: bools AND together,
// numbers sum.
type partition struct {
	bools map[string]bool
	nums  map[string]float64
}

func (p *partition) rate() *Rate {
	if p == nil || len(p.nums) == 0 {
		return nil
	}
	rate := &Rate{Dims: make(map[string]float64, len(p.nums))}
	for dim, v := range p.nums {
		if dim == "overall_score" {
			rate.Overall = v
			continue
		}
		rate.Dims[dim] = v
	}
	return rate
}

func reduceByScope(results []evaluation.Result) (map[evaluation.Scope]*partition, string, error) {
	parts := make(map[evaluation.Scope]*partition)
	var comments []string
	for _, res := range results {
		if res.Reason != "" {
			comments = append(comments, strings.TrimSpace(res.Reason))
		}
		part, ok := parts[res.Scope]
		if !ok {
			part = &partition{bools: make(map[string]bool), nums: make(map[string]float64)}
			parts[res.Scope] = part
		}
		switch v := res.Value.(type) {
		case bool:
			if _, numeric := part.nums[res.Dim]; numeric {
				return nil, "", fmt.Errorf("env: dimension %s/%s mixes bool and numeric values", res.Scope, res.Dim)
			}
			if prev, seen := part.bools[res.Dim]; seen {
				part.bools[res.Dim] = prev && v
			} else {
				part.bools[res.Dim] = v
			}
		case float64:
			if _, boolean := part.bools[res.Dim]; boolean {
				return nil, "", fmt.Errorf("env: dimension %s/%s mixes bool and numeric values", res.Scope, res.Dim)
			}
			part.nums[res.Dim] += v
		case int:
			if _, boolean := part.bools[res.Dim]; boolean {
				return nil, "", fmt.Errorf("env: dimension %s/%s mixes bool and numeric values", res.Scope, res.Dim)
			}
			part.nums[res.Dim] += float64(v)
		default:
			return nil, "", fmt.Errorf("env: dimension %s/%s has unsupported value type %T", res.Scope, res.Dim, res.Value)
		}
	}
	return parts, strings.Join(comments, " "), nil
}
