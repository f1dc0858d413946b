package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"context_cli/pkg/buffer"
)

// AllBlocks selects every block in Segment. Any count below 1 does the same.
const AllBlocks = 0

const (
	NoContentMessage  = "No content found"
	NoCommandsMessage = "No commands found"
)

// ErrInvalidCount is returned by ParseCount for anything other than a
// positive integer or "all".
var ErrInvalidCount = errors.New("invalid count")

var boundaryPattern = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(BlockBoundary))

// ParseCount converts the command-line count argument. "all" maps to
// AllBlocks.
func ParseCount(arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if strings.EqualFold(arg, "all") {
		return AllBlocks, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q must be a positive integer or 'all'", ErrInvalidCount, arg)
	}
	return n, nil
}

// ReadTranscript reads a log file as text. Bytes that are not valid UTF-8
// are replaced rather than rejected.
func ReadTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read log file: %w", err)
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// ParseBlocks splits transcript text into command blocks. Fragments with
// no usable prompt line are dropped.
func ParseBlocks(content string) []CommandBlock {
	var blocks []CommandBlock
	scanBlocks(content, func(b CommandBlock) {
		blocks = append(blocks, b)
	})
	return blocks
}

func scanBlocks(content string, fn func(CommandBlock)) {
	for _, fragment := range boundaryPattern.Split(content, -1) {
		if strings.TrimSpace(fragment) == "" {
			continue
		}
		if block, ok := parseFragment(fragment); ok {
			fn(block)
		}
	}
}

func parseFragment(fragment string) (CommandBlock, bool) {
	lines := strings.Split(fragment, "\n")

	for i, line := range lines {
		cmd := ExtractCommandFromPrompt(line)
		if cmd == "" {
			continue
		}
		if IsSelfInvocation(cmd) {
			// the first qualifying line decides the block
			return CommandBlock{}, false
		}

		block := CommandBlock{Command: cmd}
		for _, out := range lines[i+1:] {
			out = strings.TrimRightFunc(out, unicode.IsSpace)
			if strings.TrimSpace(out) == "" {
				continue
			}
			block.Output = append(block.Output, out)
		}
		return block, true
	}

	return CommandBlock{}, false
}

// Extract formats the last count blocks of content. It returns the
// NoContentMessage and NoCommandsMessage markers instead of empty text.
func Extract(content string, count int) string {
	if strings.TrimSpace(content) == "" {
		return NoContentMessage
	}

	if count <= AllBlocks {
		blocks := ParseBlocks(content)
		if len(blocks) == 0 {
			return NoCommandsMessage
		}
		return Format(blocks)
	}

	recent := buffer.New[CommandBlock](count)
	scanBlocks(content, recent.Push)
	if recent.Len() == 0 {
		return NoCommandsMessage
	}
	return Format(recent.Items())
}

// Segment reads the transcript at path and returns its last count command
// blocks as text.
func Segment(path string, count int) (string, error) {
	content, err := ReadTranscript(path)
	if err != nil {
		return "", err
	}

	slog.Debug("transcript loaded", "path", path, "bytes", len(content), "count", count)
	return Extract(content, count), nil
}
