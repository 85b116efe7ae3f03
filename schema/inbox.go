package schema

import (
	"fmt"
	"strings"
)

// EnvironmentRole is the sender name used for engine-authored messages.
const EnvironmentRole = "Environment"

// InboxEntry pairs a sender with a message. Senders are either agent names
// or EnvironmentRole.
type InboxEntry struct {
	Sender  string
	Message Message
}

// Inbox is the append-only shared transcript. The episode engine is its
// sole owner; everyone else works on snapshots.
type Inbox []InboxEntry

// Append adds an entry.
func (in *Inbox) Append(sender string, msg Message) {
	*in = append(*in, InboxEntry{Sender: sender, Message: msg})
}

// Snapshot returns a copy safe to hand to concurrently running evaluators.
func (in Inbox) Snapshot() []InboxEntry {
	out := make([]InboxEntry, len(in))
	copy(out, in)
	return out
}

// TurnDelimiter formats the environment message that opens turn k.
func TurnDelimiter(turn int) SimpleMessage {
	return SimpleMessage{Text: fmt.Sprintf("Turn #%d", turn)}
}

// IsTurnDelimiter reports whether the entry is an environment "Turn #k"
// message.
func IsTurnDelimiter(e InboxEntry) bool {
	if e.Sender != EnvironmentRole {
		return false
	}
	_, ok := e.Message.(SimpleMessage)
	return ok && strings.HasPrefix(e.Message.NaturalLanguage(), "Turn")
}

// CurrentTurnWindow returns the entries after the last turn delimiter, in
// inbox order. The grounding engine and the stale-turn rule both operate on
// this window.
func CurrentTurnWindow(entries []InboxEntry) []InboxEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		if IsTurnDelimiter(entries[i]) {
			return entries[i+1:]
		}
	}
	return entries
}

// RenderHistory linearizes the transcript with a stable format: agent
// messages as "name said: ...", environment messages bare. Entries that
// render as "did nothing" are dropped, matching what agents and evaluators
// are shown.
func RenderHistory(entries []InboxEntry) string {
	var b strings.Builder
	for _, e := range entries {
		text := e.Message.NaturalLanguage()
		if strings.Contains(text, "did nothing") {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if e.Sender == EnvironmentRole {
			b.WriteString(text)
		} else {
			b.WriteString(e.Sender + " " + text)
		}
	}
	return b.String()
}

// RenderHistoryForEnvironment is the grounding-engine flavor of
// RenderHistory: the scenario background stays first and an interaction
// header separates it from the turn-by-turn record.
func RenderHistoryForEnvironment(entries []InboxEntry) string {
	if len(entries) == 0 {
		return ""
	}
	rendered := make([]InboxEntry, 0, len(entries)+1)
	rendered = append(rendered, entries[0])
	rendered = append(rendered, InboxEntry{
		Sender:  EnvironmentRole,
		Message: SimpleMessage{Text: "#### Interaction history"},
	})
	rendered = append(rendered, entries[1:]...)
	return RenderHistory(rendered)
}
