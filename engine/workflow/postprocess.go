package workflow

import "strings"

// postProcess strips a leading/trailing triple-backtick fence (optionally
// tagged with a language hint such as "json") from an LM response and
// trims surrounding whitespace.
func postProcess(output string) string {
	output = strings.TrimSpace(output)
	switch {
	case strings.HasPrefix(output, "```json"):
		output = strings.TrimPrefix(output, "```json")
		output = strings.TrimSuffix(output, "```")
		output = strings.TrimSpace(output)
	case strings.HasPrefix(output, "```"):
		output = strings.TrimPrefix(output, "```")
		output = strings.TrimSuffix(output, "```")
		output = strings.TrimSpace(output)
	}
	return output
}
