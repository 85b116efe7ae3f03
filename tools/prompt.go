package tools

import (
	"fmt"
	"strings"
)

// RenderPrompt produces the tool block embedded in the AI agent's scenario
// view: the toolkits at medium detail, the tool roster, the rigid JSON
// shape for action arguments, and the observation-visibility note.
func RenderPrompt(toolkits []*Toolkit, shareObservation bool) string {
	descriptions := make([]string, 0, len(toolkits))
	for _, tk := range toolkits {
		descriptions = append(descriptions, tk.Describe(DetailMedium))
	}

	visibility := "**Note that the observations returned by the environment are only visible to you, " +
		"so you should speak to the other agent if you want to share them.**"
	if shareObservation {
		visibility = "**Note that the observations returned by the environment are visible to all agents.**"
	}

	return fmt.Sprintf(`Tools to use when issuing an action:
[Tool Specifications]
Each toolkit is a collection of relevant tools for completing a specific task. Each tool is specified by:
1. Arguments: The tool input argument specification
2. Returns: The tool output return specification

The following tools are available:
%s

Here are the descriptions of the toolkits:
%s

- [Format Instructions for the Agent]:

To invoke a tool, emit an action whose argument is a single JSON object of this exact shape:
`+"```json"+`
{
    "action_type": "action",
    "argument": {
        "log": "why you are making this call",
        "tool": "ToolName",
        "tool_input": {"arg1": "value1", "arg2": "value2"}
    }
}
`+"```"+`

- Format Requirements for the Agent:
1. **Use only available tools**: Do not use tools that are not provided above. In particular, do not use None or N/A as the value of the tool.
2. **Single JSON object**: Ensure the tool_input is a single JSON object that strictly follows the specification of the tool's Arguments. Do not include any unnecessary fields, comments after the JSON object, or backticks wrapping it.
3. **Avoid using placeholders**: Do not use vague input values with placeholders such as {"id": "<id>"} or {"account": "[YOUR_ACCOUNT_NUMBER]"}. First obtain the actual values (using other tools if necessary) and then use them in the input.

%s`,
		strings.Join(ToolNames(toolkits), ", "),
		strings.Join(descriptions, "\n"),
		visibility)
}
