package capture

import "strings"

// CommandBlock is one command found in a transcript and the output that
// followed it.
type CommandBlock struct {
	Command string
	Output  []string
}

// String renders the block as "$ <command>" with output lines directly
// underneath.
func (b CommandBlock) String() string {
	if len(b.Output) == 0 {
		return "$ " + b.Command
	}
	return "$ " + b.Command + "\n" + strings.Join(b.Output, "\n")
}

// Format joins blocks with a blank line between each.
func Format(blocks []CommandBlock) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.String()
	}
	return strings.Join(parts, "\n\n")
}
