package scenario

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Domain buckets scenarios by subject area.
type Domain string

const (
	DomainPersonalServices     Domain = "personal_services"
	DomainHealthcare           Domain = "healthcare"
	DomainBusinessAndFinance   Domain = "business_and_finance"
	DomainPoliticsAndLaw       Domain = "politics_and_law"
	DomainTechnologyAndScience Domain = "technology_and_science"
	DomainEducation            Domain = "education"
	DomainMiscellaneous        Domain = "miscellaneous"
)

// Realism grades how plausible the scenario is today.
type Realism string

const (
	RealismLevel1 Realism = "level1"
	RealismLevel2 Realism = "level2"
	RealismLevel3 Realism = "level3"
)

// Profile is the immutable per-episode scenario description. The engine
// never mutates it; episode init augments a copy of the prose with
// viewer-tagged blocks.
type Profile struct {
	ID                   string   `json:"id" yaml:"id"`
	Codename             string   `json:"codename" yaml:"codename"`
	Domain               Domain   `json:"domain" yaml:"domain"`
	Realism              Realism  `json:"realism" yaml:"realism"`
	Scenario             string   `json:"scenario" yaml:"scenario"`
	AgentGoals           []string `json:"agent_goals" yaml:"agent_goals"`
	Toolkits             []string `json:"toolkits" yaml:"toolkits"`
	GroundingEngineGuide string   `json:"grounding_engine_guide" yaml:"grounding_engine_guide"`
	AgentIntentLabels    []string `json:"agent_intent_labels" yaml:"agent_intent_labels"`
	DesiredOutcome       []string `json:"desired_outcome" yaml:"desired_outcome"`
	RiskyOutcome         []string `json:"risky_outcome" yaml:"risky_outcome"`
	StartingSpeech       string   `json:"starting_speech,omitempty" yaml:"starting_speech,omitempty"`
}

// Validate checks the parsed object shape. Storage is not the engine's
// concern; this only guards the contract the engine relies on.
func (p *Profile) Validate() error {
	if p.Codename == "" {
		return fmt.Errorf("scenario: profile is missing a codename")
	}
	if p.Scenario == "" {
		return fmt.Errorf("scenario %q: empty scenario prose", p.Codename)
	}
	if len(p.AgentGoals) != 2 {
		return fmt.Errorf("scenario %q: expected exactly 2 agent goals, got %d", p.Codename, len(p.AgentGoals))
	}
	switch p.Domain {
	case DomainPersonalServices, DomainHealthcare, DomainBusinessAndFinance,
		DomainPoliticsAndLaw, DomainTechnologyAndScience, DomainEducation, DomainMiscellaneous:
	default:
		return fmt.Errorf("scenario %q: unknown domain %q", p.Codename, p.Domain)
	}
	switch p.Realism {
	case RealismLevel1, RealismLevel2, RealismLevel3:
	default:
		return fmt.Errorf("scenario %q: unknown realism %q", p.Codename, p.Realism)
	}
	return nil
}

// EnsureID assigns a primary key when the profile was authored without one.
func (p *Profile) EnsureID() {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
}

// AgentProfile describes one participant.
type AgentProfile struct {
	ID         string `json:"id" yaml:"id"`
	FirstName  string `json:"first_name" yaml:"first_name"`
	LastName   string `json:"last_name" yaml:"last_name"`
	Occupation string `json:"occupation" yaml:"occupation"`
	Background string `json:"background,omitempty" yaml:"background,omitempty"`
}

// Name returns the display name used as the inbox sender.
func (a AgentProfile) Name() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// EnsureID assigns a primary key when the profile was authored without one.
func (a *AgentProfile) EnsureID() {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
}

var hintRe = regexp.MustCompile(`(?s)<(extra_info|clarification_hint|strategy_hint)>(.*?)</(extra_info|clarification_hint|strategy_hint)>`)

// RenderGoal flattens the annotated hint regions a goal may embed
// (extra info, clarification hints, strategy hints) into plain prose for
// the owning agent.
func RenderGoal(goal string) string {
	return strings.TrimSpace(hintRe.ReplaceAllString(goal, "$2"))
}
