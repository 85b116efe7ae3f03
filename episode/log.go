// Package episode assembles and stores the immutable record of a finished
// episode: the transcript regrouped by turn, evaluator reasoning, and
// per-agent rewards.
package episode

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/voocel/crucible/env"
	"github.com/voocel/crucible/scenario"
	"github.com/voocel/crucible/schema"
)

// Row is one transcript message: who said what to whom.
type Row struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

// Reward is one agent's final numeric evaluation.
type Reward struct {
	Overall float64            `json:"overall"`
	Dims    map[string]float64 `json:"dims,omitempty"`
}

// Log is the episode record handed to a storage sink. It is built once at
// episode end and never mutated.
type Log struct {
	ID            string   `json:"id"`
	Environment   string   `json:"environment"`
	Agents        []string `json:"agents"`
	Tag           string   `json:"tag,omitempty"`
	Models        []string `json:"models,omitempty"`
	Messages      [][]Row  `json:"messages"`
	Reasoning     string   `json:"reasoning"`
	Rewards       []Reward `json:"rewards"`
	RewardsPrompt string   `json:"rewards_prompt,omitempty"`
}

// LogOption configures log assembly.
type LogOption func(*Log)

// WithTag attaches a benchmark tag.
func WithTag(tag string) LogOption {
	return func(l *Log) { l.Tag = tag }
}

// WithModels records which models played each role.
func WithModels(models ...string) LogOption {
	return func(l *Log) { l.Models = models }
}

// WithResponse fills reasoning and rewards from the final turn response.
func WithResponse(resp *env.Response) LogOption {
	return func(l *Log) {
		if resp == nil {
			return
		}
		l.Reasoning = resp.Comments
		l.Rewards = []Reward{rewardFrom(resp.P1Rate), rewardFrom(resp.P2Rate)}
	}
}

// WithRewardsPrompt records the rubric the terminal evaluator saw.
func WithRewardsPrompt(prompt string) LogOption {
	return func(l *Log) { l.RewardsPrompt = prompt }
}

// WithDiagnostic appends an abnormal-termination note to the reasoning.
func WithDiagnostic(note string) LogOption {
	return func(l *Log) {
		l.Reasoning = strings.TrimSpace(l.Reasoning + " " + note)
	}
}

func rewardFrom(rate *env.Rate) Reward {
	if rate == nil {
		return Reward{}
	}
	return Reward{Overall: rate.Overall, Dims: rate.Dims}
}

// NewLog builds the episode record from an inbox snapshot. Deterministic
// apart from the generated ID: the same inputs produce the same record.
func NewLog(profile *scenario.Profile, agentNames []string, entries []schema.InboxEntry, opts ...LogOption) *Log {
	l := &Log{
		ID:          uuid.NewString(),
		Environment: profile.Codename,
		Agents:      agentNames,
		Messages:    groupByTurn(entries),
		Rewards:     []Reward{{}, {}},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// groupByTurn splits the inbox at turn delimiters. Everything before the
// first delimiter (the scenario background) forms turn group 0.
func groupByTurn(entries []schema.InboxEntry) [][]Row {
	groups := [][]Row{{}}
	for _, e := range entries {
		if schema.IsTurnDelimiter(e) {
			groups = append(groups, []Row{})
			continue
		}
		receiver := schema.EnvironmentRole
		if e.Sender == schema.EnvironmentRole {
			receiver = "all"
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], Row{
			Sender:   e.Sender,
			Receiver: receiver,
			Content:  e.Message.NaturalLanguage(),
		})
	}
	return groups
}

// RenderText renders the log as a human-readable transcript.
func RenderText(l *Log) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Episode %s (%s)\n", l.Environment, strings.Join(l.Agents, " vs "))
	if l.Tag != "" {
		fmt.Fprintf(&b, "Tag: %s\n", l.Tag)
	}
	for turn, rows := range l.Messages {
		if len(rows) == 0 {
			continue
		}
		if turn == 0 {
			b.WriteString("\n#### Background\n")
		} else {
			fmt.Fprintf(&b, "\n#### Turn %d\n", turn)
		}
		for _, row := range rows {
			fmt.Fprintf(&b, "%s -> %s: %s\n", row.Sender, row.Receiver, row.Content)
		}
	}
	if l.Reasoning != "" {
		b.WriteString("\n#### Evaluation\n" + l.Reasoning + "\n")
	}
	for i, reward := range l.Rewards {
		fmt.Fprintf(&b, "Agent %d overall: %.2f\n", i+1, reward.Overall)
	}
	return b.String()
}
