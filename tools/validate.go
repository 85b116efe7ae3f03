package tools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// InputError describes why a tool input was rejected. Its message is what
// the AI agent sees inside the error observation, so it names the offending
// field rather than internals.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s in %s", e.Reason, e.Field)
}

var (
	anglePlaceholderRe = regexp.MustCompile(`^<[^<>]*>$`)
	tokenPlaceholderRe = regexp.MustCompile(`^\[[A-Z][A-Z0-9_]*\]$`)
)

// literalPlaceholders are string values models emit instead of sourcing a
// real value.
var literalPlaceholders = map[string]bool{
	"n/a": true, "null": true, "todo": true,
}

// ValidateInput checks a candidate tool input against the spec's input
// schema and rejects unresolved placeholders. Placeholders are checked
// first: "pay <user>" with a missing amount should report the placeholder,
// not the absence.
func ValidateInput(spec *Spec, input json.RawMessage) error {
	if len(input) == 0 {
		return &InputError{Reason: "missing tool input"}
	}
	var decoded any
	if err := json.Unmarshal(input, &decoded); err != nil {
		return &InputError{Reason: "tool input is not a JSON object"}
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return &InputError{Reason: "tool input is not a JSON object"}
	}
	if err := findPlaceholder("", obj); err != nil {
		return err
	}
	if spec.input != nil {
		if err := spec.input.Validate(decoded); err != nil {
			return &InputError{Reason: schemaFailureReason(err)}
		}
	}
	return nil
}

// findPlaceholder walks the input recursively looking for values that were
// never instantiated.
func findPlaceholder(path string, value any) error {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if anglePlaceholderRe.MatchString(trimmed) ||
			tokenPlaceholderRe.MatchString(trimmed) ||
			literalPlaceholders[strings.ToLower(trimmed)] {
			return &InputError{Field: path, Reason: "placeholder"}
		}
	case map[string]any:
		for key, item := range v {
			if err := findPlaceholder(joinPath(path, key), item); err != nil {
				return err
			}
		}
	case []any:
		for i, item := range v {
			if err := findPlaceholder(fmt.Sprintf("%s[%d]", path, i), item); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// schemaFailureReason compresses a jsonschema validation error into a
// single line suitable for the error observation.
func schemaFailureReason(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 {
		tail := msg[idx+2:]
		if tail != "" {
			return tail
		}
	}
	return msg
}
