package capture

import "strings"

const (
	// BlockBoundary starts every prompt cycle written by the terminal logger.
	BlockBoundary = "┌──"
	// PromptSeparator divides the prompt from the typed command.
	PromptSeparator = "─#"
	// SessionMarker prefixes the logger's own banner lines.
	SessionMarker = "==="
	// SelfName is this tool's invocation name; its own runs are never reported.
	SelfName = "context"
)

// ExtractCommandFromPrompt returns the command typed after the prompt
// separator, or "" when the line is not a usable prompt line.
// A line qualifies only if it carries the separator exactly once and
// something follows it.
func ExtractCommandFromPrompt(line string) string {
	text := strings.TrimSpace(line)
	if text == "" || strings.HasPrefix(text, SessionMarker) {
		return ""
	}
	if strings.Count(text, PromptSeparator) != 1 {
		return ""
	}
	if strings.HasSuffix(text, PromptSeparator) {
		return ""
	}

	_, cmd, _ := strings.Cut(text, PromptSeparator)
	return strings.TrimSpace(cmd)
}

// IsSelfInvocation reports whether cmd is a run of this tool.
func IsSelfInvocation(cmd string) bool {
	return strings.HasPrefix(strings.ToLower(cmd), SelfName)
}
