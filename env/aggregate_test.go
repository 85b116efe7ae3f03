package env

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voocel/crucible/evaluation"
	"github.com/voocel/crucible/schema"
)

func baseResults() []evaluation.Result {
	return []evaluation.Result{
		evaluation.Bool(evaluation.ScopeEnvironment, "terminated", false, ""),
		evaluation.Bool(evaluation.ScopeEnvironment, "terminated", true, "budget reached"),
		evaluation.Score(evaluation.ScopeAgent1, "goal", 4, "partially achieved"),
		evaluation.Score(evaluation.ScopeAgent1, "goal", 3, ""),
		evaluation.Score(evaluation.ScopeAgent1, "overall_score", 2, ""),
		evaluation.Score(evaluation.ScopeAgent2, "targeted_safety_risks", -3, "risky transfer"),
		evaluation.Score(evaluation.ScopeAgent2, "efficiency", 7, ""),
	}
}

func TestAggregateReduces(t *testing.T) {
	resp, err := aggregate(baseResults(), nil)
	require.NoError(t, err)

	// Bools AND, numbers sum.
	assert.False(t, resp.Terminated)
	require.NotNil(t, resp.P1Rate)
	assert.Equal(t, float64(7), resp.P1Rate.Dims["goal"])
	assert.Equal(t, float64(2), resp.P1Rate.Overall)
	require.NotNil(t, resp.P2Rate)
	assert.Equal(t, float64(-3), resp.P2Rate.Dims["targeted_safety_risks"])
	assert.Contains(t, resp.Comments, "budget reached")
	assert.Contains(t, resp.Comments, "risky transfer")
}

func TestAggregateRequiresTerminatedFlag(t *testing.T) {
	_, err := aggregate([]evaluation.Result{
		evaluation.Score(evaluation.ScopeAgent1, "goal", 4, ""),
	}, nil)
	assert.Error(t, err)

	_, err = aggregate(nil, nil)
	assert.Error(t, err)
}

func TestAggregateRejectsMixedTypes(t *testing.T) {
	_, err := aggregate([]evaluation.Result{
		evaluation.Bool(evaluation.ScopeEnvironment, "terminated", false, ""),
		evaluation.Score(evaluation.ScopeAgent1, "goal", 4, ""),
		evaluation.Bool(evaluation.ScopeAgent1, "goal", true, ""),
	}, nil)
	assert.Error(t, err)
}

func TestAggregateRejectsTwoObservations(t *testing.T) {
	obs := []schema.SimulatedObservation{
		{Observation: `{"success": true}`},
		{Observation: `{"success": false}`},
	}
	_, err := aggregate([]evaluation.Result{
		evaluation.Bool(evaluation.ScopeEnvironment, "terminated", false, ""),
	}, obs)
	assert.Error(t, err)
}

func TestAggregateKeepsSingleObservation(t *testing.T) {
	obs := []schema.SimulatedObservation{
		{},
		{Observation: `{"success": true}`, Log: "sent"},
	}
	resp, err := aggregate([]evaluation.Result{
		evaluation.Bool(evaluation.ScopeEnvironment, "terminated", false, ""),
	}, obs)
	require.NoError(t, err)
	assert.Equal(t, "sent", resp.Observation.Log)
}

func TestMergeTerminalFillsOnlyUnset(t *testing.T) {
	resp := &Response{Terminated: true, P1Rate: &Rate{Overall: 5}}
	err := resp.mergeTerminal([]evaluation.Result{
		evaluation.Score(evaluation.ScopeAgent1, "overall_score", 1, ""),
		evaluation.Score(evaluation.ScopeAgent2, "overall_score", -2, "late risk"),
	})
	require.NoError(t, err)

	assert.Equal(t, float64(5), resp.P1Rate.Overall, "existing rate is kept")
	require.NotNil(t, resp.P2Rate)
	assert.Equal(t, float64(-2), resp.P2Rate.Overall)
	assert.Contains(t, resp.Comments, "late risk")
}

func TestAggregateOrderIndependent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	reference, err := aggregate(baseResults(), nil)
	require.NoError(t, err)

	properties.Property("permuting evaluator results leaves the merge unchanged", prop.ForAll(
		func(seed int64) bool {
			results := baseResults()
			r := rand.New(rand.NewSource(seed))
			r.Shuffle(len(results), func(i, j int) {
				results[i], results[j] = results[j], results[i]
			})
			resp, err := aggregate(results, nil)
			if err != nil {
				return false
			}
			return resp.Terminated == reference.Terminated &&
				reflect.DeepEqual(resp.P1Rate, reference.P1Rate) &&
				reflect.DeepEqual(resp.P2Rate, reference.P2Rate)
		},
		gen.Int64(),
	))
	properties.TestingRun(t)
}
