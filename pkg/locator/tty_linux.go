//go:build linux

package locator

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Unix98 pty slaves use majors 136 through 143.
const (
	ptsMajorFirst = 136
	ptsMajorLast  = 143
)

// stdinTerminalLink reads /proc/self/fd/0. When /proc is unavailable the
// pts number is recovered from the device number of stdin.
func stdinTerminalLink() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal")
	}

	link, err := os.Readlink("/proc/self/fd/0")
	if err == nil {
		return link, nil
	}
	return deviceLink(fd, err, unix.Fstat)
}

func deviceLink(fd int, readErr error, fstat func(int, *unix.Stat_t) error) (string, error) {
	var st unix.Stat_t
	if err := fstat(fd, &st); err != nil {
		return "", fmt.Errorf("failed to stat stdin after readlink failed (%v): %w", readErr, err)
	}
	link, ok := ptsFromRdev(uint64(st.Rdev))
	if !ok {
		return "", fmt.Errorf("stdin is not a pseudo-terminal: %w", readErr)
	}
	return link, nil
}

func ptsFromRdev(rdev uint64) (string, bool) {
	major, minor := unix.Major(rdev), unix.Minor(rdev)
	if major < ptsMajorFirst || major > ptsMajorLast {
		return "", false
	}
	return fmt.Sprintf("/dev/pts/%d", (major-ptsMajorFirst)*256+minor), true
}
