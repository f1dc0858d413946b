//go:build !linux

package locator

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// stdinTerminalLink reads the /dev/fd/0 link where the platform has one.
func stdinTerminalLink() (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("stdin is not a terminal")
	}
	link, err := os.Readlink("/dev/fd/0")
	if err != nil {
		return "", fmt.Errorf("failed to read terminal link: %w", err)
	}
	return link, nil
}
