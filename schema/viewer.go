package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Viewer identifies who may see a tagged block of scenario prose.
type Viewer string

const (
	ViewerEnvironment Viewer = "environment"
	ViewerAgent0      Viewer = "agent_0"
	ViewerAgent1      Viewer = "agent_1"
)

// AgentViewer returns the viewer tag for the agent at the given index.
func AgentViewer(index int) Viewer {
	return Viewer(fmt.Sprintf("agent_%d", index))
}

var viewerBlockRe = regexp.MustCompile(`(?s)<info viewer="([a-z_0-9]+)">(.*?)</info>`)

// TagBlock wraps content in a viewer-tagged block. The engine stores one
// canonical prose; Redact strips the blocks a given viewer is not addressed
// by.
func TagBlock(viewer Viewer, content string) string {
	return fmt.Sprintf("<info viewer=%q>%s</info>", viewer, content)
}

// Redact returns the text as seen by viewer: blocks addressed to the viewer
// are kept with their tags removed, all other tagged blocks disappear, and
// untagged text passes through.
func Redact(text string, viewer Viewer) string {
	out := viewerBlockRe.ReplaceAllStringFunc(text, func(block string) string {
		m := viewerBlockRe.FindStringSubmatch(block)
		if Viewer(m[1]) == viewer {
			return m[2]
		}
		return ""
	})
	return collapseBlankLines(out)
}

// StripTags removes all viewer tags, exposing every block. Used by the
// omniscient transcript renderer.
func StripTags(text string) string {
	out := viewerBlockRe.ReplaceAllString(text, "$2")
	return collapseBlankLines(out)
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if blank {
				continue
			}
			blank = true
			out = append(out, "")
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
